package main

import (
	"github.com/liamcoop/riskscore/assessment"
	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/rules"
)

// API request and response models

// EvaluateRequest is the body of both POST /evaluate and POST /assessments.
type EvaluateRequest struct {
	Profile        rules.Profile           `json:"profile"`
	Documents      rules.DocumentChecklist `json:"documents"`
	OCRAddressText string                  `json:"ocr_address_text,omitempty"`
}

// RulesResponse lists the rule catalog together with the policy in effect.
type RulesResponse struct {
	Rules  []rules.Rule  `json:"rules"`
	Policy policy.Policy `json:"policy"`
}

// AssessmentsListResponse is returned by GET /assessments.
type AssessmentsListResponse struct {
	Assessments []*assessment.Assessment `json:"assessments"`
	Count       int                      `json:"count"`
}

// ErrorResponse represents an error response. Fields is only set for
// profile validation failures.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details string              `json:"details,omitempty"`
	Fields  []engine.FieldError `json:"fields,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Rules  int    `json:"rules"`
	Error  string `json:"error,omitempty"`
}
