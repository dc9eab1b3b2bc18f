package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectClient    = "client"
	ObjectPlan      = "plan"
	ObjectPayment   = "payment"
	ObjectDashboard = "dashboard"
)

const (
	ActionClientView   = "client.view"
	ActionClientCreate = "client.create"
	ActionClientUpdate = "client.update"

	ActionPlanView   = "plan.view"
	ActionPlanCreate = "plan.create"
	ActionPlanUpdate = "plan.update"
	ActionPlanDelete = "plan.delete"

	ActionPaymentView        = "payment.view"
	ActionPaymentRecord      = "payment.record"
	ActionPaymentMarkOverdue = "payment.mark_overdue"

	ActionDashboardView = "dashboard.view"
)

const (
	roleAdmin = "role:admin"
	roleStaff = "role:staff"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID, companyID snowflake.ID, object, action string) error {
	if userID == 0 {
		return ErrInvalidActor
	}
	if companyID == 0 {
		return ErrInvalidCompany
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	role, err := s.roleForUser(ctx, companyID, userID)
	if err != nil {
		s.logDenied(userID, companyID, object, action)
		return err
	}

	subject := fmt.Sprintf("user:%s", userID)
	domain := fmt.Sprintf("company:%s", companyID)
	roleName := fmt.Sprintf("role:%s", strings.ToLower(role))
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.logDenied(userID, companyID, object, action)
		return ErrForbidden
	}
	return nil
}

// roleForUser reads the role from the users table so a demoted user loses
// access before their token expires.
func (s *ServiceImpl) roleForUser(ctx context.Context, companyID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role FROM users WHERE company_id = ? AND id = ? LIMIT 1`,
		companyID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject, roleName, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) logDenied(userID, companyID snowflake.ID, object, action string) {
	s.log.Warn("authorization denied",
		zap.String("user_id", userID.String()),
		zap.String("company_id", companyID.String()),
		zap.String("object", object),
		zap.String("action", action),
	)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	staff := [][]string{
		{roleStaff, ObjectClient, ActionClientView},
		{roleStaff, ObjectClient, ActionClientCreate},
		{roleStaff, ObjectClient, ActionClientUpdate},
		{roleStaff, ObjectPlan, ActionPlanView},
		{roleStaff, ObjectPayment, ActionPaymentView},
		{roleStaff, ObjectPayment, ActionPaymentRecord},
		{roleStaff, ObjectDashboard, ActionDashboardView},
	}
	admin := [][]string{
		{roleAdmin, ObjectClient, ActionClientView},
		{roleAdmin, ObjectClient, ActionClientCreate},
		{roleAdmin, ObjectClient, ActionClientUpdate},
		{roleAdmin, ObjectPlan, ActionPlanView},
		{roleAdmin, ObjectPlan, ActionPlanCreate},
		{roleAdmin, ObjectPlan, ActionPlanUpdate},
		{roleAdmin, ObjectPlan, ActionPlanDelete},
		{roleAdmin, ObjectPayment, ActionPaymentView},
		{roleAdmin, ObjectPayment, ActionPaymentRecord},
		{roleAdmin, ObjectPayment, ActionPaymentMarkOverdue},
		{roleAdmin, ObjectDashboard, ActionDashboardView},
	}

	for _, policy := range append(staff, admin...) {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
