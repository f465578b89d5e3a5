package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Elastic struct {
	client *elasticsearch.Client
	index  string
}

var _ Indexer = (*Elastic)(nil)

// NewElastic connects to the cluster and makes sure the course index exists
func NewElastic(ctx context.Context, addresses []string, username, password, index string) (*Elastic, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, err
	}
	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elastic: cannot connect to cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: cluster returned error: %s", res.String())
	}

	e := &Elastic{client: client, index: index}
	if err := e.createIndexIfNotExist(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func textField() map[string]interface{} {
	return map[string]interface{}{
		"type":            "text",
		"analyzer":        "edge_ngram_analyzer",
		"search_analyzer": "standard",
	}
}

func indexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"edge_ngram_analyzer": map[string]interface{}{
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase"},
					},
				},
				"tokenizer": map[string]interface{}{
					"edge_ngram_tokenizer": map[string]interface{}{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":           textField(),
				"subtitle":        textField(),
				"description":     textField(),
				"instructor_name": textField(),
				"slug":            map[string]interface{}{"type": "keyword"},
				"level":           map[string]interface{}{"type": "keyword"},
				"language":        map[string]interface{}{"type": "keyword"},
				"category_slug":   map[string]interface{}{"type": "keyword"},
				"price":           map[string]interface{}{"type": "long"},
				"average_rating":  map[string]interface{}{"type": "float"},
				"total_students":  map[string]interface{}{"type": "integer"},
				"published_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
}

func (e *Elastic) createIndexIfNotExist(ctx context.Context) error {
	existsRes, err := esapi.IndicesExistsRequest{Index: []string{e.index}}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("error checking index existence: %w", err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == http.StatusOK {
		return nil
	}
	if existsRes.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index existence check failed with status code %d", existsRes.StatusCode)
	}

	body, err := json.Marshal(indexMapping())
	if err != nil {
		return err
	}
	res, err := esapi.IndicesCreateRequest{Index: e.index, Body: bytes.NewReader(body)}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("mapping creation failed: %s", res.String())
	}
	return nil
}

func (e *Elastic) Enabled() bool { return true }

func (e *Elastic) Index(ctx context.Context, doc CourseDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	res, err := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: strconv.FormatUint(uint64(doc.ID), 10),
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

func (e *Elastic) Delete(ctx context.Context, courseID uint) error {
	res, err := esapi.DeleteRequest{
		Index:      e.index,
		DocumentID: strconv.FormatUint(uint64(courseID), 10),
		Refresh:    "true",
	}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

func searchQuery(query string, size int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":                query,
				"fields":               []string{"title^3", "subtitle^2", "description", "instructor_name"},
				"type":                 "best_fields",
				"fuzziness":            "AUTO",
				"operator":             "or",
				"minimum_should_match": "2<75%",
			},
		},
		"_source": false,
		"size":    size,
	}
}

func (e *Elastic) Search(ctx context.Context, query string, size int) ([]uint, error) {
	if size <= 0 {
		size = 10
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(searchQuery(query, size)); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search error: %s", string(bodyBytes))
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]uint, error) {
	var esRes struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&esRes); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	ids := make([]uint, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		if id, err := strconv.ParseUint(h.ID, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// Reindex drops every document and bulk loads docs
func (e *Elastic) Reindex(ctx context.Context, docs []CourseDocument) error {
	clear := bytes.NewReader([]byte(`{"query":{"match_all":{}}}`))
	res, err := esapi.DeleteByQueryRequest{Index: []string{e.index}, Body: clear}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	res.Body.Close()
	if len(docs) == 0 {
		return nil
	}

	body, err := bulkBody(e.index, docs)
	if err != nil {
		return err
	}
	res, err = esapi.BulkRequest{Body: body, Refresh: "true"}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.String())
	}
	return nil
}

func bulkBody(index string, docs []CourseDocument) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	for _, doc := range docs {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_index": index, "_id": strconv.FormatUint(uint64(doc.ID), 10)},
		}
		if err := enc.Encode(action); err != nil {
			return nil, err
		}
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
