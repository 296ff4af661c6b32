// Package models defines the WorkPlan domain types shared by the
// repositories, the services and the CLI.
package models
