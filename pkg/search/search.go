package search

import (
	"context"
	"log"
	"strconv"

	"github.com/olivere/elastic/v7"
)

// IndexName 商品索引
const IndexName = "market_products"

const mapping = `{
  "mappings": {
    "properties": {
      "name":     {"type": "text"},
      "subtitle": {"type": "text"},
      "keywords": {"type": "text"},
      "tags":     {"type": "text"},
      "sales":    {"type": "long"}
    }
  }
}`

// ProductDoc 写入 ES 的商品文档
type ProductDoc struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Subtitle string `json:"subtitle"`
	Keywords string `json:"keywords"`
	Tags     string `json:"tags"`
	Sales    int64  `json:"sales"`
}

// Client 商品搜索客户端
type Client struct {
	es *elastic.Client
}

// NewClient 连接 Elasticsearch 并确保索引存在
func NewClient(url string) (*Client, error) {
	es, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
	)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := es.IndexExists(IndexName).Do(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := es.CreateIndex(IndexName).BodyString(mapping).Do(ctx); err != nil {
			return nil, err
		}
	}

	log.Println("Elasticsearch connected successfully")
	return &Client{es: es}, nil
}

// BulkIndex 批量写入商品文档，启动时同步在售商品
func (c *Client) BulkIndex(ctx context.Context, docs []ProductDoc) error {
	if len(docs) == 0 {
		return nil
	}

	bulk := c.es.Bulk().Index(IndexName)
	for _, d := range docs {
		bulk.Add(elastic.NewBulkIndexRequest().Id(strconv.FormatInt(d.ID, 10)).Doc(d))
	}
	_, err := bulk.Do(ctx)
	return err
}

// SearchIDs 按关键词检索商品 ID，按销量加权
func (c *Client) SearchIDs(ctx context.Context, keyword string, limit int) ([]int64, error) {
	query := elastic.NewMultiMatchQuery(keyword, "name", "subtitle", "keywords", "tags")

	result, err := c.es.Search(IndexName).
		Query(query).
		Sort("sales", false).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		id, err := strconv.ParseInt(hit.Id, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
