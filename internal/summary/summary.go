package summary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BedUnknown is the sentinel the extraction model uses when the
// transcript never states a bed number.
const BedUnknown = "N/A"

// PatientSummary is the structured hand-off record for one ICU bed.
// The JSON keys are the wire contract shared with the extraction model.
type PatientSummary struct {
	Bed          string   `json:"leito"`
	PatientName  string   `json:"nome_paciente"`
	Diagnoses    []string `json:"diagnosticos"`
	PendingItems []string `json:"pendencias"`
	CareActions  []string `json:"condutas"`
}

// ValidationError reports a payload that does not conform to the
// summary schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("summary field %q: %s", e.Field, e.Reason)
}

// Format renders the summary in the hand-off display layout. Empty
// sections keep their header with no items.
func (s *PatientSummary) Format() string {
	lines := []string{fmt.Sprintf("Leito %s - %s", s.Bed, s.PatientName), ""}

	lines = append(lines, "Diagnósticos:")
	for i, d := range s.Diagnoses {
		lines = append(lines, fmt.Sprintf("%d- %s", i+1, d))
	}
	lines = append(lines, "")

	lines = append(lines, "Pendências:")
	for i, p := range s.PendingItems {
		lines = append(lines, fmt.Sprintf("%d- %s", i+1, p))
	}
	lines = append(lines, "")

	lines = append(lines, "Condutas:")
	for _, c := range s.CareActions {
		lines = append(lines, "• "+c)
	}

	return strings.Join(lines, "\n")
}

// ToMap returns the generic key-value form of the summary.
func (s *PatientSummary) ToMap() map[string]any {
	return map[string]any{
		"leito":         s.Bed,
		"nome_paciente": s.PatientName,
		"diagnosticos":  append([]string(nil), s.Diagnoses...),
		"pendencias":    append([]string(nil), s.PendingItems...),
		"condutas":      append([]string(nil), s.CareActions...),
	}
}

// FromMap validates a generic key-value payload and builds a summary
// from it. Every schema field must be present with the right type.
func FromMap(data map[string]any) (*PatientSummary, error) {
	bed, err := stringField(data, "leito")
	if err != nil {
		return nil, err
	}
	name, err := stringField(data, "nome_paciente")
	if err != nil {
		return nil, err
	}
	diagnoses, err := listField(data, "diagnosticos")
	if err != nil {
		return nil, err
	}
	pending, err := listField(data, "pendencias")
	if err != nil {
		return nil, err
	}
	actions, err := listField(data, "condutas")
	if err != nil {
		return nil, err
	}

	return &PatientSummary{
		Bed:          bed,
		PatientName:  name,
		Diagnoses:    diagnoses,
		PendingItems: pending,
		CareActions:  actions,
	}, nil
}

// Parse decodes a JSON payload and validates it against the schema.
func Parse(raw []byte) (*PatientSummary, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode summary payload: %w", err)
	}
	return FromMap(data)
}

func stringField(data map[string]any, field string) (string, error) {
	v, ok := data[field]
	if !ok {
		return "", &ValidationError{Field: field, Reason: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: "not a string"}
	}
	return s, nil
}

func listField(data map[string]any, field string) ([]string, error) {
	v, ok := data[field]
	if !ok {
		return nil, &ValidationError{Field: field, Reason: "missing"}
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("element %d is not a string", i)}
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, &ValidationError{Field: field, Reason: "not a list"}
	}
}
