package sqlite_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Houeta/stock-watch/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = -100200300

func TestSubscriptionWrites(t *testing.T) {
	ctx := t.Context()

	testCases := []struct {
		name    string
		query   string
		call    func(repo *sqlite.Repository) error
		execErr error
		wantOp  string
	}{
		{
			name:  "subscribe",
			query: "INSERT OR IGNORE INTO subscriptions",
			call:  func(repo *sqlite.Repository) error { return repo.SubscribeChat(ctx, testChatID) },
		},
		{
			name:    "subscribe: exec error",
			query:   "INSERT OR IGNORE INTO subscriptions",
			call:    func(repo *sqlite.Repository) error { return repo.SubscribeChat(ctx, testChatID) },
			execErr: assert.AnError,
			wantOp:  "repository.sqlite.SubscribeChat",
		},
		{
			name:  "unsubscribe",
			query: "DELETE FROM subscriptions WHERE chat_id",
			call:  func(repo *sqlite.Repository) error { return repo.UnsubscribeChat(ctx, testChatID) },
		},
		{
			name:    "unsubscribe: exec error",
			query:   "DELETE FROM subscriptions WHERE chat_id",
			call:    func(repo *sqlite.Repository) error { return repo.UnsubscribeChat(ctx, testChatID) },
			execErr: assert.AnError,
			wantOp:  "repository.sqlite.UnsubscribeChat",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockedRepo(t)
			exec := mock.ExpectExec(tc.query).WithArgs(testChatID)
			if tc.execErr != nil {
				exec.WillReturnError(tc.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := tc.call(repo)

			if tc.execErr != nil {
				require.ErrorIs(t, err, tc.execErr)
				require.ErrorContains(t, err, tc.wantOp)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetSubscribedChats(t *testing.T) {
	ctx := t.Context()
	const query = "SELECT chat_id FROM subscriptions ORDER BY chat_id"

	testCases := []struct {
		name      string
		setup     func(mock sqlmock.Sqlmock)
		want      []int64
		wantErr   string
		wantCause error
	}{
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow(testChatID).AddRow(42))
			},
			want: []int64{testChatID, 42},
		},
		{
			name: "no subscribers",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"chat_id"}))
			},
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnError(assert.AnError)
			},
			wantErr:   "repository.sqlite.GetSubscribedChats",
			wantCause: assert.AnError,
		},
		{
			name: "invalid chat_id",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow("invalid_id"))
			},
			wantErr: "failed to scan chat_id",
		},
		{
			name: "rows error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).
					WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow(testChatID).RowError(0, assert.AnError))
			},
			wantErr:   "rows iteration error",
			wantCause: assert.AnError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockedRepo(t)
			tc.setup(mock)

			chatIDs, err := repo.GetSubscribedChats(ctx)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				if tc.wantCause != nil {
					require.ErrorIs(t, err, tc.wantCause)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, chatIDs)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
