package service

import (
	"context"
	"strconv"
	"strings"

	"go-project-hub/internal/model"
	"go-project-hub/internal/writelock"
)

type ProjectStore interface {
	FindByID(ctx context.Context, id int64) (model.Project, error)
	ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string) (bool, error)
	Create(ctx context.Context, p model.Project) (model.Project, error)
	Update(ctx context.Context, p model.Project) (model.Project, error)
	Delete(ctx context.Context, id int64, ownerID int64) error
	List(ctx context.Context, query model.ProjectQuery) ([]model.Project, model.Meta, error)
}

type ProjectService struct {
	projects ProjectStore
	locks    *writelock.Keyed
	audit    *AuditService
}

func NewProjectService(projects ProjectStore, locks *writelock.Keyed, audit *AuditService) *ProjectService {
	return &ProjectService{projects: projects, locks: locks, audit: audit}
}

func projectLockKey(ownerID int64, name string) string {
	return "project:" + strconv.FormatInt(ownerID, 10) + ":" + strings.ToLower(name)
}

func projectResource(id int64) string {
	return "project:" + strconv.FormatInt(id, 10)
}

func viewerID(viewer *model.User) int64 {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}

func canView(p model.Project, viewer *model.User) bool {
	return p.Public || (viewer != nil && viewer.ID == p.OwnerID)
}

func (s *ProjectService) List(ctx context.Context, viewer *model.User, page int, limit int) ([]model.Project, model.Meta, error) {
	return s.projects.List(ctx, model.ProjectQuery{ViewerID: viewerID(viewer), Page: page, Limit: limit})
}

// Get returns a project visible to viewer. Private projects of other owners
// are reported as not found.
func (s *ProjectService) Get(ctx context.Context, viewer *model.User, id int64) (model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if !canView(p, viewer) {
		return model.Project{}, model.ErrProjectNotFound
	}
	return p, nil
}

// Owned returns a project only when owner owns it.
func (s *ProjectService) Owned(ctx context.Context, owner model.User, id int64) (model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if p.OwnerID != owner.ID {
		return model.Project{}, model.ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectService) Create(ctx context.Context, owner model.User, req model.ProjectRequest, actor model.AuditActor) (model.Project, error) {
	p, err := validateProject(req)
	if err != nil {
		return model.Project{}, err
	}
	p.OwnerID = owner.ID

	var created model.Project
	err = s.locks.Do(projectLockKey(owner.ID, p.Name), func() error {
		exists, err := s.projects.ExistsByOwnerAndName(ctx, owner.ID, p.Name)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrProjectAlreadyExists
		}

		created, err = s.projects.Create(ctx, p)
		return err
	})
	if err != nil {
		s.audit.Log(ctx, "project.create", actor, auditFailed, p.Name, err.Error())
		return model.Project{}, err
	}

	s.audit.Log(ctx, "project.create", actor, auditSuccess, projectResource(created.ID), "")
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, owner model.User, id int64, req model.ProjectRequest, actor model.AuditActor) (model.Project, error) {
	p, err := validateProject(req)
	if err != nil {
		return model.Project{}, err
	}
	p.ID = id
	p.OwnerID = owner.ID

	var updated model.Project
	err = s.locks.Do(projectLockKey(owner.ID, p.Name), func() error {
		if _, err := s.Owned(ctx, owner, id); err != nil {
			return err
		}

		var err error
		updated, err = s.projects.Update(ctx, p)
		return err
	})
	if err != nil {
		s.audit.Log(ctx, "project.update", actor, auditFailed, projectResource(id), err.Error())
		return model.Project{}, err
	}

	s.audit.Log(ctx, "project.update", actor, auditSuccess, projectResource(id), "")
	return updated, nil
}

func (s *ProjectService) Delete(ctx context.Context, owner model.User, id int64, actor model.AuditActor) error {
	err := s.projects.Delete(ctx, id, owner.ID)
	if err != nil {
		s.audit.Log(ctx, "project.delete", actor, auditFailed, projectResource(id), err.Error())
		return err
	}

	s.audit.Log(ctx, "project.delete", actor, auditSuccess, projectResource(id), "")
	return nil
}

func validateProject(req model.ProjectRequest) (model.Project, error) {
	name, err := requireText(req.Name, "name", maxNameLength)
	if err != nil {
		return model.Project{}, err
	}

	description, err := optionalText(req.Description, "description", maxDescriptionLength)
	if err != nil {
		return model.Project{}, err
	}

	return model.Project{Name: name, Description: description, Public: req.Public}, nil
}
