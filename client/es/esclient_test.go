package es

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

func startFakeElasticsearch(status int, response string, requests *[]recordedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*requests = append(*requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func TestIndex(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should put document with its id", func(t *testing.T) {
		requests := []recordedRequest{}
		server := startFakeElasticsearch(http.StatusCreated, `{"result":"created"}`, &requests)
		defer server.Close()
		_, err := CreateClient(server.URL)
		Expect(err).To(BeNil())

		Expect(Index(context.Background(), "work_orders", 100, H{"number": "WO-000001"})).To(BeNil())
		Expect(len(requests)).To(Equal(1))
		Expect(requests[0].method).To(Equal(http.MethodPut))
		Expect(requests[0].path).To(Equal("/work_orders/_doc/100"))
		Expect(requests[0].body).To(MatchJSON(`{"number":"WO-000001"}`))
	})

	t.Run("should return error on error status", func(t *testing.T) {
		requests := []recordedRequest{}
		server := startFakeElasticsearch(http.StatusBadRequest, `{"error":"bad"}`, &requests)
		defer server.Close()
		_, err := CreateClient(server.URL)
		Expect(err).To(BeNil())

		err = Index(context.Background(), "work_orders", 100, H{})
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(HavePrefix("error response status 400"))
	})
}

func TestSearch(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should decode hits", func(t *testing.T) {
		requests := []recordedRequest{}
		server := startFakeElasticsearch(http.StatusOK, `{"took":1,"timed_out":false,
			"hits":{"total":{"value":1,"relation":"eq"},"max_score":1.0,
				"hits":[{"_index":"work_orders","_id":"100","_score":1.0,"_source":{"number":"WO-000001"}}]}}`, &requests)
		defer server.Close()
		_, err := CreateClient(server.URL)
		Expect(err).To(BeNil())

		r, err := Search(context.Background(), "work_orders", H{"query": H{"match_all": H{}}})
		Expect(err).To(BeNil())
		Expect(r.Hits.Total.Value).To(Equal(1))
		Expect(len(r.Hits.Hits)).To(Equal(1))
		Expect(r.Hits.Hits[0].Id).To(Equal("100"))
		Expect(string(r.Hits.Hits[0].Source)).To(MatchJSON(`{"number":"WO-000001"}`))

		Expect(requests[0].path).To(Equal("/work_orders/_search"))
		Expect(requests[0].body).To(MatchJSON(`{"query":{"match_all":{}}}`))
	})

	t.Run("should return error on error status", func(t *testing.T) {
		requests := []recordedRequest{}
		server := startFakeElasticsearch(http.StatusNotFound, `{"error":"index_not_found_exception"}`, &requests)
		defer server.Close()
		_, err := CreateClient(server.URL)
		Expect(err).To(BeNil())

		_, err = Search(context.Background(), "work_orders", H{})
		Expect(err).ToNot(BeNil())
		Expect(err.Error()).To(ContainSubstring("index_not_found_exception"))
	})
}
