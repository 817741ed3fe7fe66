package infra

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix env prefix for viper
const EnvPrefix = "GOAPP"

// runtime environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// course backend modes
const (
	BackendREST = "rest"
	BackendSQL  = "sql"
)

// AppConfig App option object
type AppConfig struct {
	AppID           string        `mapstructure:"app_id" json:"app_id" yaml:"app_id" validate:"required"`               // Application ID
	Host            string        `mapstructure:"host" json:"host" yaml:"host"`                                         // bind host address
	Port            int           `mapstructure:"port" json:"port" yaml:"port"`                                         // bind listen port
	Env             string        `mapstructure:"env" json:"env" yaml:"env" validate:"oneof=development production"`    // runtime environment
	RequestTimeout  time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`        // per request deadline
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`     // graceful shutdown deadline
	Backend         struct {
		Mode    string        `mapstructure:"mode" json:"mode" yaml:"mode" validate:"oneof=rest sql"`                    // where courses and progress come from
		BaseURL string        `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"omitempty,url"`         // REST backend root
		Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`                                     // REST call timeout
	} `mapstructure:"backend" json:"backend" yaml:"backend"`
	Database struct {
		Driver   string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=mysql postgres"`          // driver name
		Host     string `mapstructure:"host" json:"host" yaml:"host"`                                                // server host
		MaxConn  int32  `mapstructure:"maxconn" json:"maxconn" yaml:"maxconn" validate:"min=1"`                      // maximum opening connections number
		Password string `mapstructure:"password" json:"-" yaml:"password"`                                           // db password
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`                                                // server port
		Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=tcp udp"` // connection protocol, eg.tcp
		Query    string `mapstructure:"query" json:"query" yaml:"query"`                                             // DSN query parameter
		Schema   string `mapstructure:"schema" json:"schema" yaml:"schema"`                                          // use schema
		User     string `mapstructure:"username" json:"username" yaml:"username"`                                    // db username
	} `mapstructure:"database" json:"database" yaml:"database"`
	Logging struct {
		FilePath string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`                            // log file path
		Level    string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"` // global logging level
	} `mapstructure:"logging" json:"logging" yaml:"logging"`
	Security struct {
		IDLength  int           `mapstructure:"id_length" json:"id_length" yaml:"id_length" validate:"min=8"` // length of generated ID for entities
		JWTMethod string        `mapstructure:"jwt_method" json:"jwt_method" yaml:"jwt_method" validate:"oneof=HS256 HS512"`
		JWTSecret string        `mapstructure:"jwt_secret" json:"-" yaml:"jwt_secret" validate:"required"`
		TokenName string        `mapstructure:"token_name" json:"token_name" yaml:"token_name" validate:"required"` // cookie name carrying the token
		TokenTTL  time.Duration `mapstructure:"token_ttl" json:"token_ttl" yaml:"token_ttl"`                        // lifetime of refreshed tokens
	} `mapstructure:"security" json:"security" yaml:"security"`
	KVStore struct {
		Host     string `mapstructure:"host" json:"host" yaml:"host" validate:"required"` // bind host address
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`                     // bind listen port
		Password string `mapstructure:"password" json:"-" yaml:"password"`
		DB       int    `mapstructure:"db" json:"db" yaml:"db"`
	} `mapstructure:"kv" json:"kv" yaml:"kv"`
	Player struct {
		SessionTTL     time.Duration `mapstructure:"session_ttl" json:"session_ttl" yaml:"session_ttl"`             // idle lifetime of a player session
		GateNavigation bool          `mapstructure:"gate_navigation" json:"gate_navigation" yaml:"gate_navigation"` // prev/next respect locked lessons
	} `mapstructure:"player" json:"player" yaml:"player"`
	DevOP struct {
		APM bool `mapstructure:"apm" json:"apm" yaml:"apm"`
	} `mapstructure:"devop" json:"devop" yaml:"devop"`
}

// InitConfig init app config using viper
func InitConfig() (*AppConfig, error) {
	// app
	pflag.String("host", "", "binding address")
	pflag.String("app_id", "", "application identifier (required)")
	pflag.String("env", EnvDevelopment, "runtime environment, can be 'development' or 'production'")
	pflag.Int("port", 8081, "listening port")
	pflag.Duration("request_timeout", 30*time.Second, "request deadline(m, s and h units are supported), eg.30s")
	pflag.Duration("shutdown_timeout", 10*time.Second, "time given to in-flight requests on shutdown")

	// backend
	pflag.String("backend.mode", BackendREST, "course backend, can be 'rest' or 'sql'")
	pflag.String("backend.base_url", "", "root URL of the course REST backend (required in rest mode)")
	pflag.Duration("backend.timeout", 10*time.Second, "timeout of a single backend call")

	// database
	pflag.String("database.driver", "mysql", "database driver to use, sql mode only")
	pflag.String("database.host", "127.0.0.1", "database host")
	pflag.Int("database.port", 3306, "database server port")
	pflag.String("database.protocol", "", "connection protocol(if mysql is used, this flag must be set), eg.tcp")
	pflag.String("database.username", "", "database username")
	pflag.String("database.password", "", "database password")
	pflag.String("database.schema", "", "database schema")
	pflag.String("database.query", "", `additional DSN query parameters('?' is auto prefixed), if you work with mysql and wish to
work with time.Time, you may specify "parseTime=true"`)
	pflag.Int32("database.maxconn", 50, `max connection count, if you encounter a "too many connections" error, please consider
increasing the max_connection value of your db server, or lower this value`)

	// logging
	pflag.String("logging.level", "info", "logging level")
	pflag.String("logging.file_path", "", "log to file")

	// security
	pflag.Int("security.id_length", 24, "set length of generated ID for entities")
	pflag.String("security.jwt_method", "HS256", "hash algorithm used for JWT auth")
	pflag.String("security.jwt_secret", "", "JWT secret (required)")
	pflag.String("security.token_name", "token", "cookie name to read the token from")
	pflag.Duration("security.token_ttl", 2*time.Hour, "lifetime given to refreshed tokens")

	// kv storage
	pflag.String("kv.host", "127.0.0.1", "kv host")
	pflag.Int("kv.port", 6379, "kv server port")
	pflag.String("kv.password", "", "kv server password")
	pflag.Int("kv.db", 0, "kv database index")

	// player
	pflag.Duration("player.session_ttl", 24*time.Hour, "idle lifetime of a player session")
	pflag.Bool("player.gate_navigation", false, "prev/next buttons refuse to enter locked lessons")

	// DevOp
	pflag.Bool("devop.apm", false, "enable apm metrics")

	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config = new(AppConfig)
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if config.Logging.Level == "debug" {
		if configJSON, err := json.MarshalIndent(config, "", "  "); err == nil {
			log.Printf("App config: %s\n", string(configJSON))
		}
	}
	return config, nil
}

func validateConfig(config *AppConfig) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "-" || name == "" {
			return ""
		}
		return name
	})
	var msg []string
	if config.Backend.Mode == BackendREST && config.Backend.BaseURL == "" {
		msg = append(msg, "backend.base_url is required")
	}
	err := validate.Struct(config)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	verrs, _ := err.(validator.ValidationErrors)
	for _, field := range verrs {
		namespace := field.Namespace()
		fieldName := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", fieldName))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
		case "min":
			msg = append(msg, fmt.Sprintf("%s must be at least %s", fieldName, field.Param()))
		default:
			msg = append(msg, fmt.Sprintf("%s is invalid (%s)", fieldName, field.Tag()))
		}
	}
	if len(msg) == 0 {
		return nil
	}
	return fmt.Errorf("failed to validate config: \n%s", strings.Join(msg, "\n"))
}
