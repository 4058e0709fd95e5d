package es

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"
)

type unreachableTransport struct{}

func (t *unreachableTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTracingTransport(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)

	var propagatedTraceID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		propagatedTraceID = r.Header.Get("Mockpfx-Ids-Traceid")
		if strings.HasPrefix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// traced sends the request under a parent span and returns the finished child span.
	traced := func(transport http.RoundTripper, method, target string) (*http.Response, *mocktracer.MockSpan, error) {
		tracer.Reset()
		req, err := http.NewRequest(method, target, nil)
		Expect(err).To(BeNil())

		parent := tracer.StartSpan("index work order")
		req = req.WithContext(opentracing.ContextWithSpan(context.Background(), parent))
		res, err := (&http.Client{Transport: &TracingTransport{Transport: transport}}).Do(req)
		parent.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		Expect(spans[1].OperationName).To(Equal("index work order"))
		Expect(spans[0].ParentID).To(Equal(spans[1].SpanContext.SpanID))
		Expect(spans[0].SpanContext.TraceID).To(Equal(spans[1].SpanContext.TraceID))
		return res, spans[0], err
	}

	t.Run("request without span is not traced", func(t *testing.T) {
		tracer.Reset()
		propagatedTraceID = ""

		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}
		res, err := client.Get(ts.URL + "/work_orders/_search")
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))

		Expect(tracer.FinishedSpans()).To(BeEmpty())
		Expect(propagatedTraceID).To(BeEmpty())
	})

	t.Run("index request is traced as a client span named after the path", func(t *testing.T) {
		res, child, err := traced(http.DefaultTransport, http.MethodPut, ts.URL+"/work_orders/_doc/1")
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))

		Expect(child.OperationName).To(Equal("PUT /work_orders/_doc/1"))
		Expect(child.Tags()).To(Equal(map[string]interface{}{
			"span.kind":        ext.SpanKindEnum("client"),
			"http.url":         ts.URL + "/work_orders/_doc/1",
			"http.method":      "PUT",
			"http.status_code": uint16(200),
			"error":            false,
		}))
		Expect(propagatedTraceID).ToNot(BeEmpty())
	})

	t.Run("error status marks the span as failed", func(t *testing.T) {
		res, child, err := traced(http.DefaultTransport, http.MethodGet, ts.URL+"/missing/_search")
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusNotFound))

		Expect(child.OperationName).To(Equal("GET /missing/_search"))
		Expect(child.Tag("http.status_code")).To(Equal(uint16(404)))
		Expect(child.Tag("error")).To(Equal(true))
		Expect(child.Tag("error.detail")).To(BeNil())
	})

	t.Run("transport failure records the error detail", func(t *testing.T) {
		res, child, err := traced(&unreachableTransport{}, http.MethodPost, "http://127.0.0.1:9200/work_orders/_search")
		Expect(res).To(BeNil())
		var urlErr *url.Error
		Expect(errors.As(err, &urlErr)).To(BeTrue())
		Expect(urlErr.Err.Error()).To(Equal("connection refused"))

		Expect(child.OperationName).To(Equal("POST /work_orders/_search"))
		Expect(child.Tags()).To(Equal(map[string]interface{}{
			"span.kind":    ext.SpanKindEnum("client"),
			"http.url":     "http://127.0.0.1:9200/work_orders/_search",
			"http.method":  "POST",
			"error":        true,
			"error.detail": "connection refused",
		}))
	})
}
