package license

import (
	"context"
	"errors"
	"testing"

	"github.com/keygen-sh/keygen-go/v3"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/birthpad/internal/config"
)

func testGate(t *testing.T, key string, validate validateFunc) *Gate {
	g := NewGate(config.KeygenConfig{AccountID: "acct", ProductID: "prod"}, key, zaptest.NewLogger(t))
	g.fingerprint = func() (string, error) { return "fp", nil }
	g.validate = validate
	return g
}

func TestDisabledGatePasses(t *testing.T) {
	g := NewGate(config.KeygenConfig{}, "", zaptest.NewLogger(t))
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Check(context.Background()))
}

func TestGateRequiresKey(t *testing.T) {
	g := testGate(t, "", func(context.Context, string) (*keygen.License, error) {
		t.Fatal("validate must not be called")
		return nil, nil
	})
	assert.ErrorIs(t, g.Check(context.Background()), ErrLicenseRequired)
}

func TestGateValidation(t *testing.T) {
	tests := []struct {
		name    string
		lic     *keygen.License
		err     error
		wantErr error
	}{
		{"valid", &keygen.License{ID: "lic-1"}, nil, nil},
		{"expired", nil, keygen.ErrLicenseExpired, ErrLicenseExpired},
		{"not found", nil, nil, nil},
		{"other", nil, errors.New("network"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFingerprint string
			g := testGate(t, "ABCDEF-123456", func(_ context.Context, fp string) (*keygen.License, error) {
				gotFingerprint = fp
				return tt.lic, tt.err
			})
			err := g.Check(context.Background())
			assert.Equal(t, "fp", gotFingerprint)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.lic != nil:
				assert.NoError(t, err)
			default:
				assert.Error(t, err)
			}
		})
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", mask("short"))
	assert.Equal(t, "ABCDEF-1...", mask("ABCDEF-123456"))
}
