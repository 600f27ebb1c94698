package conf

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/rc/schema"
	"github.com/txix-open/jsonschema"
)

func init() {
	schema.CustomGenerators.Register("logLevel", func(field reflect.StructField, t *jsonschema.Schema) {
		t.Type = "string"
		t.Enum = []interface{}{"debug", "info", "error", "fatal"}
	})
}

type Remote struct {
	Redis      *Redis      `schema:"Redis settings,counter storage for daily limits and email capture"`
	Http       Http        `schema:"HTTP settings"`
	Logging    Logging     `schema:"Logging settings"`
	DailyLimit DailyLimit  `schema:"Daily limit settings,counters reset at 00:00 UTC"`
	Throttling *Throttling `schema:"Throttling settings,per-second guard in front of the generation service"`
	Generation Generation  `schema:"Workout generation service settings"`
	Cleanup    Cleanup     `schema:"Counter cleanup settings"`
}

type Http struct {
	MaxRequestBodySizeInMb int64 `valid:"required" schema:"Maximum request body size,in megabytes"`
}

type Logging struct {
	LogLevel         log.Level `schemaGen:"logLevel" schema:"Log level,request logging happens on debug level"`
	RequestLogEnable bool      `schema:"Enable request logging"`
	BodyLogEnable    bool      `schema:"Enable request and response body logging,request logging must be enabled"`
}

type DailyLimit struct {
	RequestsPerDay       int64 `valid:"required" schema:"Admitted requests per identity per day"`
	GlobalRequestsPerDay int64 `schema:"Admitted requests per day across all identities,0 disables the global ceiling"`
}

type Throttling struct {
	RequestsPerSecond int `valid:"required,range(1|1000)" schema:"Requests per second"`
	Burst             int `valid:"required" schema:"Burst size,maximum requests admitted at once"`
}

type Generation struct {
	Url          string `schema:"Generation endpoint URL,absence is reported as a configuration error on request"`
	TimeoutInSec int    `valid:"required" schema:"Outbound request timeout,in seconds"`
}

type Cleanup struct {
	SecretKey     string `valid:"required" schema:"Secret key,authorizes the on-demand cleanup trigger"`
	IntervalInSec int    `valid:"required" schema:"Scheduler period,in seconds, daily is sufficient"`
}

func (r Remote) Validate() error {
	if r.Redis == nil {
		return errors.New("redis is required")
	}
	if r.Redis.Sentinel == nil && r.Redis.Address == "" {
		return errors.New("invalid redis config. sentinel or address are required")
	}
	return nil
}

type Redis struct {
	Address  string         `schema:"Address,required if sentinel is not specified"`
	Username string         `schema:"Username"`
	Password string         `schema:"Password"`
	Sentinel *RedisSentinel `schema:"Sentinel settings,required if address is not specified"`
}

type RedisSentinel struct {
	Addresses  []string `valid:"required" schema:"Cluster node addresses"`
	MasterName string   `valid:"required" schema:"Master name"`
	Username   string   `schema:"Sentinel username"`
	Password   string   `schema:"Sentinel password"`
}
