package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/search"
)

const DefaultIndex = "bills"

// DefaultPageSize bounds one search request; SearchBillIDs keeps paging until a short page.
const DefaultPageSize = 500

const mapping = `{
	"settings": {
		"analysis": {
			"normalizer": {
				"lowercase": { "type": "custom", "filter": ["lowercase"] }
			}
		}
	},
	"mappings": {
		"properties": {
			"bill_id": { "type": "keyword" },
			"shop_name": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"invoice_number": { "type": "keyword", "normalizer": "lowercase" },
			"date": { "type": "date", "format": "yyyy-MM-dd" },
			"product_names": { "type": "text" },
			"total_amount": { "type": "double" },
			"created_at": { "type": "date", "format": "epoch_millis" }
		}
	}
}`

// document is the indexed view of a bill; items collapse into their product names.
type document struct {
	BillID        string   `json:"bill_id"`
	ShopName      string   `json:"shop_name"`
	InvoiceNumber string   `json:"invoice_number"`
	Date          string   `json:"date"`
	ProductNames  []string `json:"product_names"`
	TotalAmount   float64  `json:"total_amount"`
	CreatedAt     int64    `json:"created_at"`
}

// ElasticIndexer implements bill.Indexer on Elasticsearch.
type ElasticIndexer struct {
	es       *search.Client
	index    string
	pageSize int
}

func NewElasticIndexer(es *search.Client, index string) *ElasticIndexer {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticIndexer{es: es, index: index, pageSize: DefaultPageSize}
}

// EnsureIndex creates the index with its mapping; an existing index is left alone.
func (e *ElasticIndexer) EnsureIndex(ctx context.Context) error {
	return e.es.CreateIndex(ctx, e.index, mapping)
}

func (e *ElasticIndexer) IndexBill(ctx context.Context, b *model.Bill) error {
	return e.es.Index(ctx, e.index, b.ID, toDocument(b))
}

func (e *ElasticIndexer) DeleteBill(ctx context.Context, id string) error {
	return e.es.Delete(ctx, e.index, id)
}

// SearchBillIDs returns every matching bill id, best match first. Results are read in pages of
// DefaultPageSize using search_after on (score, bill_id).
func (e *ElasticIndexer) SearchBillIDs(ctx context.Context, query string) ([]string, error) {
	var (
		ids   []string
		after []interface{}
	)
	for {
		res, err := e.es.Search(ctx, e.index, searchBody(query, e.pageSize, after))
		if err != nil {
			return nil, err
		}
		for _, hit := range res.Hits.Hits {
			ids = append(ids, hit.ID)
		}
		n := len(res.Hits.Hits)
		if n < e.pageSize || len(res.Hits.Hits[n-1].Sort) == 0 {
			return ids, nil
		}
		after = res.Hits.Hits[n-1].Sort
	}
}

// searchBody builds one page of a substring search. The query is lowercased to match the
// normalized invoice_number and the analyzed text fields.
func searchBody(query string, size int, after []interface{}) map[string]interface{} {
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", escape(strings.ToLower(query))),
				"fields": []string{"invoice_number^3", "shop_name^2", "product_names"},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"bill_id": "asc"},
		},
		"_source": false,
		"size":    size,
	}
	if len(after) > 0 {
		q["search_after"] = after
	}
	return q
}

func toDocument(b *model.Bill) document {
	names := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		names = append(names, it.ProductName)
	}
	total, _ := b.TotalAmount.Float64()
	return document{
		BillID:        b.ID,
		ShopName:      b.ShopName,
		InvoiceNumber: b.InvoiceNumber,
		Date:          b.Date,
		ProductNames:  names,
		TotalAmount:   total,
		CreatedAt:     b.CreatedAt,
	}
}

var reserved = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`, `>`, `\>`, `<`, `\<`,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`,
	`"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

// escape quotes query_string operators so user input is matched literally.
func escape(s string) string {
	return reserved.Replace(s)
}
