package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/ayush/inkwell/backend/internal/models"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, models.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), models.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, models.ErrDuplicate},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil},
		{"passthrough", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want == nil {
				assert.False(t, errors.Is(got, models.ErrDuplicate))
				assert.False(t, errors.Is(got, models.ErrNotFound))
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
