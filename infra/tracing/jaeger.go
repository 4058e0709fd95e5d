package tracing

import (
	"io"
	"itad/common"
	"itad/config"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerlog "github.com/uber/jaeger-client-go/log"
	"github.com/uber/jaeger-lib/metrics"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// InitGlobalTracer reports every span to the jaeger agent. Without an agent host the noop tracer stays in place.
func InitGlobalTracer(cfg config.TracingConfig) (io.Closer, error) {
	if cfg.AgentHost == "" {
		common.Log.Info("jaeger agent not configured, tracing disabled")
		return closerFunc(func() error { return nil }), nil
	}

	jcfg := jaegercfg.Configuration{
		ServiceName: cfg.ServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.AgentHost,
		},
	}
	tracer, closer, err := jcfg.NewTracer(
		jaegercfg.Logger(jaegerlog.StdLogger),
		jaegercfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
