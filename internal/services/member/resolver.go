package member

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/model"
)

var (
	mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)
	idPattern      = regexp.MustCompile(`^\d+$`)
)

// Resolver finds guild members from what an admin typed into a form
type Resolver struct {
	gateway chat.Gateway
	guildID string
}

// NewResolver creates a Resolver for one guild
func NewResolver(gateway chat.Gateway, guildID string) *Resolver {
	return &Resolver{gateway: gateway, guildID: guildID}
}

// Resolve accepts a raw user id, a <@id> or <@!id> mention, or a legacy
// name#tag. Anything that does not match a member yields ErrMemberNotFound.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*chat.Member, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, model.ErrMemberNotFound
	}

	if id, ok := ParseUserID(identifier); ok {
		return r.lookup(r.gateway.Member(ctx, r.guildID, id))
	}

	name, tag := identifier, ""
	if i := strings.LastIndex(identifier, "#"); i >= 0 {
		name, tag = identifier[:i], identifier[i+1:]
	}
	return r.lookup(r.gateway.FindMemberByTag(ctx, r.guildID, name, tag))
}

func (r *Resolver) lookup(m *chat.Member, err error) (*chat.Member, error) {
	if err != nil {
		if errors.Is(err, model.ErrMemberNotFound) {
			return nil, err
		}
		return nil, errors.Join(model.ErrMemberNotFound, err)
	}
	if m == nil {
		return nil, model.ErrMemberNotFound
	}
	return m, nil
}

// ParseUserID extracts a user id from a raw id or a mention
func ParseUserID(identifier string) (string, bool) {
	if m := mentionPattern.FindStringSubmatch(identifier); m != nil {
		return m[1], true
	}
	if idPattern.MatchString(identifier) {
		return identifier, true
	}
	return "", false
}
