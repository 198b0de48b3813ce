package controller

import (
	"github.com/ougirez/bizmap/internal/service/analytics"
	"github.com/ougirez/bizmap/internal/service/auth"
	"github.com/ougirez/bizmap/internal/service/business"
)

type Controller struct {
	businessService  *business.Service
	analyticsService *analytics.Service
	authService      *auth.Service
}

func NewController(b *business.Service, a *analytics.Service, au *auth.Service) *Controller {
	return &Controller{
		businessService:  b,
		analyticsService: a,
		authService:      au,
	}
}
