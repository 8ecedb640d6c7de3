package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultDriveRelayURL = "https://script.google.com/macros/s/AKfycbxpCv2dQgzIVnOidTbdmeGsfodcfelNjIXQ_2K_AirObP6gwTa0B9yG95oQTxdaFqNT/exec"
	DefaultPDFRelayURL   = "https://script.google.com/macros/s/AKfycbySGLcT528CY4seJnJavosm2u3y9Ui5s5m-xpp2htPWBQ9gyQ3Aons1zyyNK8imyTnIwg/exec"
)

type Env struct {
	AppAddr  string `mapstructure:"app_addr"`
	GinMode  string `mapstructure:"gin_mode"`
	LogLevel string `mapstructure:"log_level"`

	SerialStore string `mapstructure:"serial_store"` // file | badger | mysql
	SerialFile  string `mapstructure:"serial_file"`
	BadgerDir   string `mapstructure:"badger_dir"`
	MySQLDSN    string `mapstructure:"mysql_dsn"`

	DriveRelayURL string `mapstructure:"drive_relay_url"`
	PDFRelayURL   string `mapstructure:"pdf_relay_url"`
	RelayBaseURL  string `mapstructure:"relay_base_url"`

	UploadBackend string `mapstructure:"upload_backend"` // relay | s3
	UploadFolder  string `mapstructure:"upload_folder"`
	S3Bucket      string `mapstructure:"s3_bucket"`

	WhatsAppNumber     string `mapstructure:"whatsapp_number"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	FooterLine         string `mapstructure:"footer_line"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("serial_store", "file")
	v.SetDefault("serial_file", "serial.txt")
	v.SetDefault("badger_dir", "data/serial")
	v.SetDefault("mysql_dsn", "")
	v.SetDefault("drive_relay_url", DefaultDriveRelayURL)
	v.SetDefault("pdf_relay_url", DefaultPDFRelayURL)
	v.SetDefault("relay_base_url", "")
	v.SetDefault("upload_backend", "relay")
	v.SetDefault("upload_folder", "Travel Information")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("whatsapp_number", "5511952691735")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("footer_line", "Cnpj: 30.735.162/0001-39")
}

// LoadEnv reads configuration from the environment and, when TRIPFORM_CONFIG
// points at a file, from that file first. Environment variables win.
func LoadEnv() (Env, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only sees keys viper already knows; bind them upper-cased.
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Env{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path := strings.TrimSpace(os.Getenv("TRIPFORM_CONFIG")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Env{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return Env{}, fmt.Errorf("decoding config: %w", err)
	}
	env.normalize()
	if err := env.Validate(); err != nil {
		return Env{}, err
	}
	return env, nil
}

func (e *Env) normalize() {
	e.AppAddr = strings.TrimSpace(e.AppAddr)
	e.SerialStore = strings.ToLower(strings.TrimSpace(e.SerialStore))
	e.UploadBackend = strings.ToLower(strings.TrimSpace(e.UploadBackend))
	e.RelayBaseURL = strings.TrimRight(strings.TrimSpace(e.RelayBaseURL), "/")
	if e.RelayBaseURL == "" {
		e.RelayBaseURL = "http://localhost" + listenPort(e.AppAddr)
	}
}

func listenPort(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":8080"
}

// Validate checks the backend selections and their required settings.
func (e Env) Validate() error {
	switch e.SerialStore {
	case "file":
		if strings.TrimSpace(e.SerialFile) == "" {
			return fmt.Errorf("serial_file required for file store")
		}
	case "badger":
		if strings.TrimSpace(e.BadgerDir) == "" {
			return fmt.Errorf("badger_dir required for badger store")
		}
	case "mysql":
		if strings.TrimSpace(e.MySQLDSN) == "" {
			return fmt.Errorf("mysql_dsn required for mysql store")
		}
	default:
		return fmt.Errorf("unknown serial_store %q", e.SerialStore)
	}
	switch e.UploadBackend {
	case "relay":
	case "s3":
		if strings.TrimSpace(e.S3Bucket) == "" {
			return fmt.Errorf("s3_bucket required for s3 upload backend")
		}
	default:
		return fmt.Errorf("unknown upload_backend %q", e.UploadBackend)
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS. Empty means any origin.
func (e Env) AllowedOrigins() []string {
	out := []string{}
	for _, o := range strings.Split(e.CORSAllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
