package query

import (
	"context"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

// SessionReader is the read-side surface the queries consume. The account
// manager satisfies it.
type SessionReader interface {
	Session(ctx context.Context, accountKey string) (*core.Session, error)
	ListAccounts(ctx context.Context) ([]string, error)
}

type GetSessionQuery struct {
	reader SessionReader
}

func NewGetSessionQuery(reader SessionReader) *GetSessionQuery {
	return &GetSessionQuery{reader: reader}
}

func (q *GetSessionQuery) Query(ctx context.Context, msg GetSessionMessage) (*core.Session, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: session reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, queryWrapValidation(err, "query: invalid get-session message")
	}
	return q.reader.Session(ctx, msg.AccountKey)
}

type GetProfileQuery struct {
	reader SessionReader
}

func NewGetProfileQuery(reader SessionReader) *GetProfileQuery {
	return &GetProfileQuery{reader: reader}
}

func (q *GetProfileQuery) Query(ctx context.Context, msg GetProfileMessage) (core.McProfile, error) {
	if q == nil || q.reader == nil {
		return core.McProfile{}, queryDependencyError("query: session reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.McProfile{}, queryWrapValidation(err, "query: invalid get-profile message")
	}
	session, err := q.reader.Session(ctx, msg.AccountKey)
	if err != nil {
		return core.McProfile{}, err
	}
	return session.Profile, nil
}

type ListAccountsQuery struct {
	reader SessionReader
}

func NewListAccountsQuery(reader SessionReader) *ListAccountsQuery {
	return &ListAccountsQuery{reader: reader}
}

func (q *ListAccountsQuery) Query(ctx context.Context, _ ListAccountsMessage) ([]string, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: session reader is required")
	}
	return q.reader.ListAccounts(ctx)
}
