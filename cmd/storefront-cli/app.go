package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"storefront/config"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/infra/auth"
	logs "storefront/internal/infra/log"
	"storefront/internal/infra/persistence/file"
	"storefront/internal/infra/qrcode"
	"storefront/internal/storefront"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	stateFile = "visitors.json"
	keyFile   = "storage.key"
)

// profileNamespace derives stable visitor ids from profile names.
var profileNamespace = uuid.MustParse("0f7f1c55-7c2a-4b8e-9a43-5d3c8f1f2a10")

type globalOptions struct {
	profile  string
	stateDir string
	apiURL   string
	verbose  bool
	jsonOut  bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	home, _ := os.UserHomeDir()

	cmd.PersistentFlags().StringVarP(&o.profile, "profile", "p", "default", "Named session; each profile signs in separately")
	cmd.PersistentFlags().StringVar(&o.stateDir, "state-dir", filepath.Join(home, ".storefront"), "Directory holding sealed sessions")
	cmd.PersistentFlags().StringVar(&o.apiURL, "api", "", "Backend base URL, overrides api.baseUrl")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Log backend traffic to stderr")
	cmd.PersistentFlags().BoolVarP(&o.jsonOut, "json", "j", false, "Print raw JSON")
}

// session is one CLI invocation bound to the profile's SDK client.
type session struct {
	client   *storefront.Client
	registry *storefront.Registry
	out      io.Writer
	jsonOut  bool
}

// run resolves the profile's session, executes fn and saves the credentials
// the backend handed out, even when fn fails.
func run(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, s *session) error) error {
	s, err := open(cmd.Context(), opts)
	if err != nil {
		return err
	}
	s.out = cmd.OutOrStdout()

	ctx := cmd.Context()
	s.client.Auth.Resolve(ctx)

	runErr := fn(ctx, s)

	if err := s.registry.Persist(context.WithoutCancel(ctx), s.client); err != nil {
		return errors.Wrap(err, "save session")
	}

	return runErr
}

func open(ctx context.Context, opts *globalOptions) (*session, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}
	if !opts.verbose {
		cfg.Env.Log.Level = "warn"
	}

	logger, err := logs.NewWithWriter(cfg, os.Stderr)
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}

	key, err := loadOrCreateKey(opts.stateDir)
	if err != nil {
		return nil, err
	}
	sealer, err := auth.NewSecretboxSealer(key)
	if err != nil {
		return nil, errors.Wrap(err, "storage key")
	}

	trackingURL := "http://localhost:3000/orders/"
	qrSize, qrLevel := 256, "M"
	if cfg.QRCode != nil {
		trackingURL, qrSize, qrLevel = cfg.QRCode.TrackingURL, cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel
	}
	qr, err := qrcode.NewQRCodeService(qrSize, qrLevel, trackingURL)
	if err != nil {
		return nil, errors.Wrap(err, "qrcode")
	}

	registry := storefront.NewRegistryWith(storefront.Deps{
		Config:    cfg,
		Logger:    logger,
		Inspector: auth.NewJWTInspector(),
		QRCodes:   qr,
	}, file.NewVisitorRepository(filepath.Join(opts.stateDir, stateFile)), sealer, cfg.Visitor)

	client, err := registry.Get(ctx, profileID(opts.profile))
	if err != nil {
		return nil, err
	}

	logger.Debug("Profile loaded", slog.String("profile", opts.profile), slog.String("backend", cfg.API.BaseURL))

	return &session{client: client, registry: registry, jsonOut: opts.jsonOut}, nil
}

func profileID(profile string) uuid.UUID {
	return uuid.NewSHA1(profileNamespace, []byte(strings.ToLower(strings.TrimSpace(profile))))
}

// loadOrCreateKey returns the hex sealing key of the state directory,
// generating it on first use.
func loadOrCreateKey(dir string) (string, error) {
	path := filepath.Join(dir, keyFile)

	raw, err := os.ReadFile(path)
	if err == nil {
		return strings.TrimSpace(string(raw)), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", errors.Wrap(err, "read storage key")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", errors.Wrap(err, "generate storage key")
	}
	encoded := hex.EncodeToString(key)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrap(err, "create state dir")
	}
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return "", errors.Wrap(err, "write storage key")
	}

	return encoded, nil
}

func (s *session) printJSON(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")

	return errors.WithStack(enc.Encode(v))
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// describe renders an error for the terminal, listing field errors one per line.
func describe(err error) string {
	var appErr domainerrors.AppError
	if !errors.As(err, &appErr) {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("Error: " + appErr.Message())
	for _, f := range appErr.Fields() {
		b.WriteString(fmt.Sprintf("\n  %s: %s", f.Field, f.Message))
	}
	if appErr.Kind() == domainerrors.KindUnauthorized {
		b.WriteString("\nRun `storefront login` to sign in.")
	}

	return b.String()
}
