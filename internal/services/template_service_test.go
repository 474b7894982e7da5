package services

import (
	"testing"

	"github.com/eventops/taskflow/internal/graph"
	"github.com/eventops/taskflow/internal/models"
	"github.com/stretchr/testify/suite"
)

// TemplateServiceTestSuite covers the persisted prerequisite graph.
type TemplateServiceTestSuite struct {
	serviceSuite
}

func TestTemplateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TemplateServiceTestSuite))
}

func (s *TemplateServiceTestSuite) TestCreateTemplate() {
	department := s.createDepartment("Operations")

	template, err := s.templateService.CreateTemplate(CreateTemplateInput{
		DepartmentID: department.ID,
		Title:        "Book venue",
		TitleAr:      "حجز القاعة",
	})
	s.NoError(err)
	s.NotZero(template.ID)

	_, err = s.templateService.CreateTemplate(CreateTemplateInput{DepartmentID: department.ID})
	s.ErrorIs(err, ErrTemplateTitleRequired)
}

func (s *TemplateServiceTestSuite) TestAddPrerequisite_RejectsCycle() {
	department := s.createDepartment("Operations")
	a := s.createTemplate("A", department.ID)
	b := s.createTemplate("B", department.ID)
	c := s.createTemplate("C", department.ID)

	s.Require().NoError(s.templateService.AddPrerequisite(b.ID, a.ID))
	s.Require().NoError(s.templateService.AddPrerequisite(c.ID, b.ID))

	// Closing the loop through the transitive chain must fail.
	err := s.templateService.AddPrerequisite(a.ID, c.ID)
	var cycleErr *graph.CycleError
	s.ErrorAs(err, &cycleErr)
	s.Equal(a.ID, cycleErr.TemplateID)
	s.Equal(c.ID, cycleErr.PrerequisiteTemplateID)

	// No edge was persisted for the rejected write.
	closure, err := s.templateService.TransitiveClosure(a.ID)
	s.NoError(err)
	s.Empty(closure)
}

func (s *TemplateServiceTestSuite) TestAddPrerequisite_SelfLoop() {
	department := s.createDepartment("Operations")
	a := s.createTemplate("A", department.ID)

	err := s.templateService.AddPrerequisite(a.ID, a.ID)
	var cycleErr *graph.CycleError
	s.ErrorAs(err, &cycleErr)
}

func (s *TemplateServiceTestSuite) TestAddPrerequisite_Idempotent() {
	department := s.createDepartment("Operations")
	a := s.createTemplate("A", department.ID)
	b := s.createTemplate("B", department.ID)

	s.NoError(s.templateService.AddPrerequisite(b.ID, a.ID))
	s.NoError(s.templateService.AddPrerequisite(b.ID, a.ID))

	var count int64
	s.Require().NoError(s.db.Model(&models.PrerequisiteEdge{}).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *TemplateServiceTestSuite) TestAddPrerequisite_CrossDepartment() {
	ops := s.createDepartment("Operations")
	catering := s.createDepartment("Catering")
	a := s.createTemplate("A", ops.ID)
	b := s.createTemplate("B", catering.ID)

	s.ErrorIs(s.templateService.AddPrerequisite(a.ID, b.ID), ErrCrossDepartmentTemplate)
	s.ErrorIs(s.templateService.AddPrerequisite(9999, a.ID), ErrTemplateNotFound)
}

func (s *TemplateServiceTestSuite) TestRemovePrerequisite_ReopensDirection() {
	department := s.createDepartment("Operations")
	a := s.createTemplate("A", department.ID)
	b := s.createTemplate("B", department.ID)

	s.Require().NoError(s.templateService.AddPrerequisite(b.ID, a.ID))

	found, err := s.templateService.RemovePrerequisite(b.ID, a.ID)
	s.NoError(err)
	s.True(found)

	// Missing edge is reported, not an error.
	found, err = s.templateService.RemovePrerequisite(b.ID, a.ID)
	s.NoError(err)
	s.False(found)

	// The reversed edge is legal again after the removal.
	s.NoError(s.templateService.AddPrerequisite(a.ID, b.ID))
}

func (s *TemplateServiceTestSuite) TestTransitiveClosure() {
	department := s.createDepartment("Operations")
	a := s.createTemplate("A", department.ID)
	b := s.createTemplate("B", department.ID)
	c := s.createTemplate("C", department.ID)
	d := s.createTemplate("D", department.ID)

	// Diamond: d depends on b and c, both depend on a.
	s.Require().NoError(s.templateService.AddPrerequisite(b.ID, a.ID))
	s.Require().NoError(s.templateService.AddPrerequisite(c.ID, a.ID))
	s.Require().NoError(s.templateService.AddPrerequisite(d.ID, b.ID))
	s.Require().NoError(s.templateService.AddPrerequisite(d.ID, c.ID))

	closure, err := s.templateService.TransitiveClosure(d.ID)
	s.NoError(err)
	s.Equal([]uint64{a.ID, b.ID, c.ID}, closure)

	closure, err = s.templateService.TransitiveClosure(a.ID)
	s.NoError(err)
	s.Empty(closure)
}

func (s *TemplateServiceTestSuite) TestAvailablePrerequisites() {
	department := s.createDepartment("Operations")
	other := s.createDepartment("Catering")

	a := s.createTemplate("A", department.ID)
	b := s.createTemplate("B", department.ID)
	c := s.createTemplate("C", department.ID)
	s.createTemplate("Elsewhere", other.ID)

	s.Require().NoError(s.templateService.AddPrerequisite(b.ID, a.ID))
	s.Require().NoError(s.templateService.AddPrerequisite(c.ID, b.ID))

	// For a, both b and c would close a cycle; nothing remains.
	available, err := s.templateService.AvailablePrerequisites(a.ID)
	s.NoError(err)
	s.Empty(available)

	// For b, only c depends on it; a is already a prerequisite but adding it
	// again is harmless, so it stays a candidate.
	available, err = s.templateService.AvailablePrerequisites(b.ID)
	s.NoError(err)
	s.Require().Len(available, 1)
	s.Equal(a.ID, available[0].ID)

	// For c, nothing depends on it yet; the other department never appears.
	available, err = s.templateService.AvailablePrerequisites(c.ID)
	s.NoError(err)
	s.Require().Len(available, 2)
	s.Equal(a.ID, available[0].ID)
	s.Equal(b.ID, available[1].ID)
}

func (s *TemplateServiceTestSuite) TestDeleteTemplate_DropsEdgesBothDirections() {
	department := s.createDepartment("Operations")
	a := s.createTemplate("A", department.ID)
	b := s.createTemplate("B", department.ID)
	c := s.createTemplate("C", department.ID)

	s.Require().NoError(s.templateService.AddPrerequisite(b.ID, a.ID))
	s.Require().NoError(s.templateService.AddPrerequisite(c.ID, b.ID))

	s.NoError(s.templateService.DeleteTemplate(b.ID))

	var count int64
	s.Require().NoError(s.db.Model(&models.PrerequisiteEdge{}).Count(&count).Error)
	s.EqualValues(0, count)

	// With b gone, a may now depend on c.
	s.NoError(s.templateService.AddPrerequisite(a.ID, c.ID))
}
