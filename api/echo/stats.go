package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core/stats"
)

type statsApi struct {
	svc *stats.Service
}

// Analytics are supervisor territory; interviewers see only their own figures
// through the interviewer endpoint.
func registerAnalyticsAPI(g *echo.Group, auth echo.MiddlewareFunc, api *statsApi) {
	ag := g.Group("/analytics", auth, supervisorMiddleware())

	ag.GET("/schools", api.schoolStats)
	ag.GET("/beggars", api.beggarStats)
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/interviewer/:interviewerId", api.interviewerStats)
}

func (api *statsApi) schoolStats(ctx echo.Context) error {
	var filter stats.SchoolFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to SchoolFilter")
	}

	rep, err := api.svc.SchoolStats(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "computing school statistics")
	}
	return respond(ctx, http.StatusOK, "School statistics retrieved successfully", rep)
}

func (api *statsApi) beggarStats(ctx echo.Context) error {
	var filter stats.BeggarFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to BeggarFilter")
	}

	rep, err := api.svc.BeggarStats(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "computing beggar statistics")
	}
	return respond(ctx, http.StatusOK, "Beggar statistics retrieved successfully", rep)
}

func (api *statsApi) dashboard(ctx echo.Context) error {
	rep, err := api.svc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard data")
	}
	return respond(ctx, http.StatusOK, "Dashboard data retrieved successfully", rep)
}

func (api *statsApi) interviewerStats(ctx echo.Context) error {
	rep, err := api.svc.InterviewerStats(ctx.Request().Context(), ctx.Param("interviewerId"))
	if err != nil {
		return errors.Wrap(err, "computing interviewer statistics")
	}
	return respond(ctx, http.StatusOK, "Interviewer statistics retrieved successfully", rep)
}
