package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/gema-grader-api/internal/models"
	"github.com/noah-isme/gema-grader-api/pkg/assessor"
)

// Outcome classes for a single grading response.
const (
	OutcomeSuccess        = "success"
	OutcomeSchemaInvalid  = "schema_invalid"
	OutcomeBadRequest     = "bad_request"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeTransportError = "transport_error"
	OutcomeUnknownError   = "unknown_error"
)

// Classification is the resolved verdict for one backend reply. Detail is
// developer-facing diagnostics (status code, validation error, body excerpt)
// and is never shown to end users.
type Classification struct {
	Outcome     string
	Assessments models.AssessmentSet
	StatusCode  int
	Detail      string
}

const assessmentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["completeness", "accuracy", "spag"],
  "properties": {
    "completeness": {"$ref": "#/$defs/criterion"},
    "accuracy": {"$ref": "#/$defs/criterion"},
    "spag": {"$ref": "#/$defs/criterion"}
  },
  "$defs": {
    "criterion": {
      "type": "object",
      "required": ["score", "reasoning"],
      "properties": {
        "score": {"type": "number"},
        "reasoning": {"type": "string"}
      }
    }
  }
}`

// ResponseClassifier assigns each raw backend reply to exactly one outcome
// class. Scores are checked for presence and type only; range semantics
// belong to the backend.
type ResponseClassifier struct {
	schema *jsonschema.Schema
}

// NewResponseClassifier compiles the success-body schema.
func NewResponseClassifier() (*ResponseClassifier, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("assessment.json", strings.NewReader(assessmentSchema)); err != nil {
		return nil, fmt.Errorf("add assessment schema: %w", err)
	}

	schema, err := compiler.Compile("assessment.json")
	if err != nil {
		return nil, fmt.Errorf("compile assessment schema: %w", err)
	}

	return &ResponseClassifier{schema: schema}, nil
}

// Classify maps a raw reply, or the absence of one, onto the outcome
// taxonomy in priority order: transport, unauthorized, bad request, success
// body validation, everything else unknown.
func (c *ResponseClassifier) Classify(response *assessor.RawResponse, transportErr error) Classification {
	if transportErr != nil || response == nil {
		detail := "no response from backend"
		if transportErr != nil {
			detail = transportErr.Error()
		}
		return Classification{Outcome: OutcomeTransportError, Detail: detail}
	}

	switch response.StatusCode {
	case http.StatusUnauthorized:
		return Classification{Outcome: OutcomeUnauthorized, StatusCode: response.StatusCode, Detail: string(response.Body)}
	case http.StatusBadRequest:
		return Classification{Outcome: OutcomeBadRequest, StatusCode: response.StatusCode, Detail: string(response.Body)}
	case http.StatusOK, http.StatusCreated:
		return c.classifyBody(response)
	default:
		return Classification{Outcome: OutcomeUnknownError, StatusCode: response.StatusCode, Detail: string(response.Body)}
	}
}

func (c *ResponseClassifier) classifyBody(response *assessor.RawResponse) Classification {
	var document interface{}
	if err := json.Unmarshal(response.Body, &document); err != nil {
		return Classification{
			Outcome:    OutcomeSchemaInvalid,
			StatusCode: response.StatusCode,
			Detail:     fmt.Sprintf("malformed json: %v", err),
		}
	}

	if err := c.schema.Validate(document); err != nil {
		return Classification{
			Outcome:    OutcomeSchemaInvalid,
			StatusCode: response.StatusCode,
			Detail:     err.Error(),
		}
	}

	var payload struct {
		Completeness models.CriterionAssessment `json:"completeness"`
		Accuracy     models.CriterionAssessment `json:"accuracy"`
		SPAG         models.CriterionAssessment `json:"spag"`
	}
	if err := json.Unmarshal(response.Body, &payload); err != nil {
		return Classification{
			Outcome:    OutcomeSchemaInvalid,
			StatusCode: response.StatusCode,
			Detail:     fmt.Sprintf("decode assessment: %v", err),
		}
	}

	return Classification{
		Outcome:    OutcomeSuccess,
		StatusCode: response.StatusCode,
		Assessments: models.AssessmentSet{
			models.CriterionCompleteness: payload.Completeness,
			models.CriterionAccuracy:     payload.Accuracy,
			models.CriterionSPAG:         payload.SPAG,
		},
	}
}
