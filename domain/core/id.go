package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	DebateID      ID
	StageID       ID
	AgentID       ID
	ParticipantID ID
	ArgumentID    ID
	VoteID        ID
	ChallengeID   ID
)

// String conversions for domain IDs
func (id DebateID) String() string      { return ID(id).String() }
func (id StageID) String() string       { return ID(id).String() }
func (id AgentID) String() string       { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }
func (id ArgumentID) String() string    { return ID(id).String() }
func (id VoteID) String() string        { return ID(id).String() }
func (id ChallengeID) String() string   { return ID(id).String() }

// ParseDebateID parses a string into DebateID
func ParseDebateID(s string) (DebateID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("debate ID cannot be empty")
	}
	return DebateID(s), nil
}

// ParseStageID parses a string into StageID
func ParseStageID(s string) (StageID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("stage ID cannot be empty")
	}
	return StageID(s), nil
}

// ParseAgentID parses a string into AgentID
func ParseAgentID(s string) (AgentID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("agent ID cannot be empty")
	}
	return AgentID(s), nil
}

// ParseChallengeID parses a string into ChallengeID
func ParseChallengeID(s string) (ChallengeID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("challenge ID cannot be empty")
	}
	return ChallengeID(s), nil
}
