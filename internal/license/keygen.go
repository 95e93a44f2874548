// internal/license/keygen.go
package license

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"

	"github.com/keygen-sh/keygen-go/v3"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/birthpad/internal/config"
)

var (
	// ErrLicenseRequired is returned when the gate is enabled but no key is configured.
	ErrLicenseRequired = errors.New("license key required")
	// ErrLicenseExpired is returned for an expired key.
	ErrLicenseExpired = errors.New("license has expired")
)

type validateFunc func(ctx context.Context, fingerprint string) (*keygen.License, error)

// Gate checks the license before trading commands run. A gate without a
// Keygen account is disabled and lets everything through.
type Gate struct {
	logger  *zap.Logger
	cfg     config.KeygenConfig
	key     string
	enabled bool

	fingerprint func() (string, error)
	validate    validateFunc
}

// NewGate configures the Keygen client from cfg.
func NewGate(cfg config.KeygenConfig, licenseKey string, logger *zap.Logger) *Gate {
	g := &Gate{
		logger:      logger.Named("license"),
		cfg:         cfg,
		key:         licenseKey,
		enabled:     cfg.AccountID != "",
		fingerprint: machineFingerprint,
	}
	g.validate = func(ctx context.Context, fingerprint string) (*keygen.License, error) {
		keygen.Account = g.cfg.AccountID
		keygen.Product = g.cfg.ProductID
		keygen.Token = g.cfg.ProductToken
		keygen.LicenseKey = g.key
		return keygen.Validate(ctx, fingerprint)
	}
	return g
}

// Enabled reports whether a Keygen account is configured.
func (g *Gate) Enabled() bool { return g.enabled }

// Check validates the key for this machine, activating it on first use.
func (g *Gate) Check(ctx context.Context) error {
	if !g.enabled {
		return nil
	}
	if g.key == "" {
		return ErrLicenseRequired
	}
	g.logger.Info("Validating license", zap.String("key", mask(g.key)))

	fingerprint, err := g.fingerprint()
	if err != nil {
		return fmt.Errorf("failed to generate machine fingerprint: %w", err)
	}

	lic, err := g.validate(ctx, fingerprint)
	switch {
	case errors.Is(err, keygen.ErrLicenseNotActivated):
		g.logger.Info("License not activated, attempting activation")
		machine, activateErr := lic.Activate(ctx, fingerprint)
		if activateErr != nil {
			return fmt.Errorf("failed to activate license: %w", activateErr)
		}
		g.logger.Info("License activated", zap.String("machine_id", machine.ID))
	case errors.Is(err, keygen.ErrLicenseExpired):
		return ErrLicenseExpired
	case err != nil:
		return fmt.Errorf("license validation failed: %w", err)
	}

	if lic == nil {
		return fmt.Errorf("license not found")
	}
	g.logger.Info("License validation successful", zap.String("license_id", lic.ID))
	return nil
}

func mask(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..."
}

// machineFingerprint hashes hostname, the first active MAC and the OS.
func machineFingerprint() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var mac string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 && len(iface.HardwareAddr) > 0 {
			mac = iface.HardwareAddr.String()
			break
		}
	}
	if mac == "" {
		return "", fmt.Errorf("no network interfaces found")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	hash := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%s", hostname, mac, runtime.GOOS)))
	return fmt.Sprintf("%x", hash), nil
}
