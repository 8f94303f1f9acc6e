package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid uuid", raw: "0190e6a3-6f33-7000-8000-000000000001"},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "not-a-uuid", wantErr: true},
		{name: "nil uuid", raw: "00000000-0000-0000-0000-000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoTenant)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, got.String())
			assert.False(t, got.IsZero())
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	_, err := FromContext(ctx)
	assert.ErrorIs(t, err, ErrNoTenant)

	tid := MustResolve("0190e6a3-6f33-7000-8000-000000000001")
	ctx = WithID(ctx, tid)

	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, tid, got)
	assert.Equal(t, tid.String(), IDString(ctx))
}
