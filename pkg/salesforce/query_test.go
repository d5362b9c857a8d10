package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindContactByName(t *testing.T) {
	tests := []struct {
		name    string
		queryFn func(ctx context.Context, soql string, out any) error
		want    *Contact
		wantErr string
	}{
		{
			name: "found",
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "FROM Contact WHERE FirstName = 'Jane' AND LastName = 'O\\'Brien' LIMIT 1")
				*out.(*[]Contact) = []Contact{{ID: "003a", FirstName: "Jane", LastName: "O'Brien"}}
				return nil
			},
			want: &Contact{ID: "003a", FirstName: "Jane", LastName: "O'Brien"},
		},
		{
			name: "not found",
			queryFn: func(_ context.Context, _ string, _ any) error {
				return nil
			},
		},
		{
			name: "query error",
			queryFn: func(_ context.Context, _ string, _ any) error {
				return errors.New("boom")
			},
			wantErr: "sf: find contact Jane O'Brien",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindContactByName(context.Background(), &mockClient{queryFn: tt.queryFn}, "Jane", "O'Brien")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeSoql(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeSoql("O'Brien"))
	assert.Equal(t, `a\\b`, escapeSoql(`a\b`))
	assert.Equal(t, "plain", escapeSoql("plain"))
}
