package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

// errNextStrategy tells the chain to try the next resolver.
var errNextStrategy = errors.New("next strategy")

// LinkedAccountResolver is one way of discovering accounts that share data
// with the current user.
type LinkedAccountResolver interface {
	Name() string
	Resolve(ctx context.Context) ([]core.LinkedAccount, error)
}

// RPCResolver asks the backend's get_linked_users procedure. A backend
// without the procedure defers to the next resolver.
type RPCResolver struct {
	Source datasource.LinkedAccountSource
}

func (r RPCResolver) Name() string { return "rpc" }

func (r RPCResolver) Resolve(ctx context.Context) ([]core.LinkedAccount, error) {
	accounts, err := r.Source.GetLinkedUsers(ctx)
	if err != nil {
		if errors.Is(err, datasource.ErrFunctionNotFound) {
			return nil, errNextStrategy
		}
		return nil, err
	}
	return accounts, nil
}

// RelationshipResolver counts rows in the relationship table and synthesizes
// a generic placeholder account when any exist.
type RelationshipResolver struct {
	Source datasource.LinkedAccountSource
	UserID string
}

func (r RelationshipResolver) Name() string { return "relationships" }

func (r RelationshipResolver) Resolve(ctx context.Context) ([]core.LinkedAccount, error) {
	n, err := r.Source.CountRelationships(ctx, r.UserID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return []core.LinkedAccount{{Email: "usuário vinculado", Relationship: "spouse"}}, nil
}

// LinkedAccounts resolves through an ordered strategy chain. Everything fails
// open: an exhausted or failing chain means "no linked accounts", which the
// UI turns into the link-your-accounts banner, never an error page.
type LinkedAccounts struct {
	resolvers []LinkedAccountResolver
}

// NewLinkedAccounts builds the default chain for a backend: RPC first, then
// the relationship-count fallback.
func NewLinkedAccounts(source datasource.LinkedAccountSource, userID string) *LinkedAccounts {
	return &LinkedAccounts{
		resolvers: []LinkedAccountResolver{
			RPCResolver{Source: source},
			RelationshipResolver{Source: source, UserID: userID},
		},
	}
}

// Load returns the linked accounts and whether the banner should show (no
// accounts found).
func (l *LinkedAccounts) Load(ctx context.Context) ([]core.LinkedAccount, bool) {
	for _, r := range l.resolvers {
		accounts, err := r.Resolve(ctx)
		if errors.Is(err, errNextStrategy) {
			slog.DebugContext(ctx, "Linked account resolver deferred", "resolver", r.Name())
			continue
		}
		if err != nil {
			// A hard failure fails open rather than trying weaker strategies.
			slog.WarnContext(ctx, "Linked account resolver failed",
				"resolver", r.Name(), "error", err)
			return nil, true
		}
		// A resolver that answered is authoritative, even with zero accounts.
		return accounts, len(accounts) == 0
	}
	return nil, true
}
