package search

import (
	"encoding/json"
	"fmt"
	"itad/bizerror"
	"itad/client/es"
	"itad/domain/state"
	"itad/indices"
	"itad/session"
	"strings"
)

const (
	defaultSearchSize = 50
	maxSearchSize     = 500
)

var (
	SearchWorkOrdersFunc = SearchWorkOrders

	searchFields = []string{"workOrderNumber", "serial", "imei", "model", "technicianName",
		"reportedIssue", "diagnosis", "resolution"}
)

type WorkOrderSearch struct {
	Keyword string `form:"keyword"`
	Status  string `form:"status"`
	Size    int    `form:"size"`
}

// SearchWorkOrders runs a full text search over the work order index, most recently updated first.
func SearchWorkOrders(q *WorkOrderSearch, s *session.Session) ([]indices.WorkOrderDocument, error) {
	if !s.Perms.HasAnyRole(session.PermTechnician, session.PermSupervisor) {
		return nil, bizerror.ErrForbidden
	}

	/*
		{
			"query": {"bool": {"filter": [
				{"terms": {"status": ["qc_pending"]}},
				{"multi_match": {"query": "xxx", "fields": [...], "operator": "and"}}
			]}},
			"size": 50,
			"sort": [{"updatedAt": {"order": "desc"}}]
		}
	*/
	filters := make([]es.H, 0, 2)
	if strings.TrimSpace(q.Status) != "" {
		statuses := []state.Status{}
		for _, v := range strings.Split(q.Status, ",") {
			status, err := state.ParseStatus(strings.TrimSpace(v))
			if err != nil {
				return nil, bizerror.NewValidationError("status", err.Error())
			}
			statuses = append(statuses, status)
		}
		filters = append(filters, es.H{"terms": es.H{"status": statuses}})
	}
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		filters = append(filters, es.H{"multi_match": es.H{"query": keyword, "fields": searchFields, "operator": "and"}})
	}

	size := q.Size
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	root := es.H{"bool": es.H{"filter": filters}}
	sorts := []es.H{{"updatedAt": es.H{"order": "desc"}}}
	r, err := es.SearchFunc(s.Ctx(), indices.WorkOrderIndexName, es.H{"size": size, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}

	docs := make([]indices.WorkOrderDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.WorkOrderDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, fmt.Errorf("decode work order document %s: %w", hit.Id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
