package command

import (
	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
)

// Activity Commands
type CreateActivity struct {
	activity.CreateInput
}

type UpdateActivity struct {
	ID    string         `json:"id"`
	Patch activity.Patch `json:"patch"`
}

// Client Commands
type CreateClient struct {
	client.CreateInput
}

type UpdateClient struct {
	ID    string       `json:"id"`
	Patch client.Patch `json:"patch"`
}

type DeleteClient struct {
	ID string `json:"id"`
}
