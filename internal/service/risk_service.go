package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go-project-hub/internal/model"
	"go-project-hub/internal/writelock"
)

const (
	minRiskRating = 1
	maxRiskRating = 5
)

type RiskStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.Risk, error)
	FindByID(ctx context.Context, projectID int64, id int64) (model.Risk, error)
	Create(ctx context.Context, rk model.Risk) (model.Risk, error)
	Update(ctx context.Context, rk model.Risk) (model.Risk, error)
	Delete(ctx context.Context, projectID int64, id int64) error
}

type RiskService struct {
	risks    RiskStore
	projects *ProjectService
	locks    *writelock.Keyed
	audit    *AuditService
}

func NewRiskService(risks RiskStore, projects *ProjectService, locks *writelock.Keyed, audit *AuditService) *RiskService {
	return &RiskService{risks: risks, projects: projects, locks: locks, audit: audit}
}

func riskLockKey(projectID int64) string {
	return "risk:" + strconv.FormatInt(projectID, 10)
}

func riskResource(projectID int64, id int64) string {
	return fmt.Sprintf("project:%d/risk:%d", projectID, id)
}

func (s *RiskService) List(ctx context.Context, viewer *model.User, projectID int64) ([]model.Risk, error) {
	if _, err := s.projects.Get(ctx, viewer, projectID); err != nil {
		return nil, err
	}
	return s.risks.ListByProject(ctx, projectID)
}

func (s *RiskService) Get(ctx context.Context, viewer *model.User, projectID int64, id int64) (model.Risk, error) {
	if _, err := s.projects.Get(ctx, viewer, projectID); err != nil {
		return model.Risk{}, err
	}
	return s.risks.FindByID(ctx, projectID, id)
}

func (s *RiskService) Create(ctx context.Context, owner model.User, projectID int64, req model.RiskRequest, actor model.AuditActor) (model.Risk, error) {
	rk, err := validateRisk(req)
	if err != nil {
		return model.Risk{}, err
	}
	rk.ProjectID = projectID

	var created model.Risk
	err = s.locks.Do(riskLockKey(projectID), func() error {
		if _, err := s.projects.Owned(ctx, owner, projectID); err != nil {
			return err
		}

		var err error
		created, err = s.risks.Create(ctx, rk)
		return err
	})
	if err != nil {
		s.audit.Log(ctx, "risk.create", actor, auditFailed, projectResource(projectID), err.Error())
		return model.Risk{}, err
	}

	s.audit.Log(ctx, "risk.create", actor, auditSuccess, riskResource(projectID, created.ID), "")
	return created, nil
}

func (s *RiskService) Update(ctx context.Context, owner model.User, projectID int64, id int64, req model.RiskRequest, actor model.AuditActor) (model.Risk, error) {
	rk, err := validateRisk(req)
	if err != nil {
		return model.Risk{}, err
	}
	rk.ProjectID = projectID
	rk.ID = id

	var updated model.Risk
	err = s.locks.Do(riskLockKey(projectID), func() error {
		if _, err := s.projects.Owned(ctx, owner, projectID); err != nil {
			return err
		}

		var err error
		updated, err = s.risks.Update(ctx, rk)
		return err
	})
	if err != nil {
		s.audit.Log(ctx, "risk.update", actor, auditFailed, riskResource(projectID, id), err.Error())
		return model.Risk{}, err
	}

	s.audit.Log(ctx, "risk.update", actor, auditSuccess, riskResource(projectID, id), "")
	return updated, nil
}

func (s *RiskService) Delete(ctx context.Context, owner model.User, projectID int64, id int64, actor model.AuditActor) error {
	err := s.locks.Do(riskLockKey(projectID), func() error {
		if _, err := s.projects.Owned(ctx, owner, projectID); err != nil {
			return err
		}
		return s.risks.Delete(ctx, projectID, id)
	})
	if err != nil {
		s.audit.Log(ctx, "risk.delete", actor, auditFailed, riskResource(projectID, id), err.Error())
		return err
	}

	s.audit.Log(ctx, "risk.delete", actor, auditSuccess, riskResource(projectID, id), "")
	return nil
}

func validateRisk(req model.RiskRequest) (model.Risk, error) {
	title, err := requireText(req.Title, "title", maxNameLength)
	if err != nil {
		return model.Risk{}, err
	}

	description, err := optionalText(req.Description, "description", maxDescriptionLength)
	if err != nil {
		return model.Risk{}, err
	}

	if req.Probability < minRiskRating || req.Probability > maxRiskRating {
		return model.Risk{}, badRequest(fmt.Sprintf("probability must be between %d and %d", minRiskRating, maxRiskRating), "probability")
	}
	if req.Impact < minRiskRating || req.Impact > maxRiskRating {
		return model.Risk{}, badRequest(fmt.Sprintf("impact must be between %d and %d", minRiskRating, maxRiskRating), "impact")
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case "":
		status = model.RiskStatusOpen
	case model.RiskStatusOpen, model.RiskStatusMitigated, model.RiskStatusClosed:
	default:
		return model.Risk{}, badRequest("status must be one of open, mitigated, closed", "status")
	}

	return model.Risk{
		Title:       title,
		Description: description,
		Probability: req.Probability,
		Impact:      req.Impact,
		Score:       req.Probability * req.Impact,
		Status:      status,
	}, nil
}
