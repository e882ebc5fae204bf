package models

// Story is a ticket tracker user story the pipeline turns into code.
type Story struct {
	Key                string `json:"key"                yaml:"key"`
	Summary            string `json:"summary"            yaml:"summary"`
	Description        string `json:"description"        yaml:"description"`
	AcceptanceCriteria string `json:"acceptanceCriteria" yaml:"acceptance_criteria"`
}
