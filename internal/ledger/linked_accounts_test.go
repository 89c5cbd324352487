package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

type fakeLinkedSource struct {
	rpcAccounts []core.LinkedAccount
	rpcErr      error
	count       int
	countErr    error
	rpcCalls    int
	countCalls  int
}

func (f *fakeLinkedSource) GetLinkedUsers(context.Context) ([]core.LinkedAccount, error) {
	f.rpcCalls++
	return f.rpcAccounts, f.rpcErr
}

func (f *fakeLinkedSource) CountRelationships(context.Context, string) (int, error) {
	f.countCalls++
	return f.count, f.countErr
}

func TestLinkedAccountsChain(t *testing.T) {
	tests := []struct {
		name         string
		source       *fakeLinkedSource
		wantAccounts int
		wantBanner   bool
		wantFallback bool
	}{
		{
			name: "rpc succeeds",
			source: &fakeLinkedSource{
				rpcAccounts: []core.LinkedAccount{{Email: "michele@example.com", Relationship: "spouse"}},
			},
			wantAccounts: 1,
			wantBanner:   false,
			wantFallback: false,
		},
		{
			name: "rpc missing, relationships exist",
			source: &fakeLinkedSource{
				rpcErr: fmt.Errorf("rpc get_linked_users: %w", datasource.ErrFunctionNotFound),
				count:  1,
			},
			wantAccounts: 1,
			wantBanner:   false,
			wantFallback: true,
		},
		{
			name: "rpc missing, no relationships",
			source: &fakeLinkedSource{
				rpcErr: datasource.ErrFunctionNotFound,
			},
			wantAccounts: 0,
			wantBanner:   true,
			wantFallback: true,
		},
		{
			name: "rpc hard failure fails open without fallback",
			source: &fakeLinkedSource{
				rpcErr: errors.New("backend down"),
				count:  3,
			},
			wantAccounts: 0,
			wantBanner:   true,
			wantFallback: false,
		},
		{
			name: "rpc returns empty list",
			source: &fakeLinkedSource{
				count: 1, // must not be consulted
			},
			wantAccounts: 0,
			wantBanner:   true,
			wantFallback: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chain := NewLinkedAccounts(tc.source, "user-1")
			accounts, banner := chain.Load(context.Background())

			if len(accounts) != tc.wantAccounts {
				t.Errorf("accounts = %d, want %d", len(accounts), tc.wantAccounts)
			}
			if banner != tc.wantBanner {
				t.Errorf("banner = %v, want %v", banner, tc.wantBanner)
			}
			if tc.source.rpcCalls != 1 {
				t.Errorf("rpc called %d times, want 1", tc.source.rpcCalls)
			}
			if gotFallback := tc.source.countCalls > 0; gotFallback != tc.wantFallback {
				t.Errorf("fallback consulted = %v, want %v", gotFallback, tc.wantFallback)
			}
		})
	}
}

func TestRelationshipResolverPlaceholder(t *testing.T) {
	src := &fakeLinkedSource{count: 2}
	accounts, err := RelationshipResolver{Source: src, UserID: "u1"}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want the single placeholder", len(accounts))
	}
	if accounts[0].Email != "usuário vinculado" || accounts[0].Relationship != "spouse" {
		t.Errorf("placeholder = %+v", accounts[0])
	}
}
