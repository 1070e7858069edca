// Package shopsearch provides an embedded Go client for the shopsearch
// product catalog: semantic search, "more like this" recommendations,
// and interaction tracking backed by Redis or Bolt.
//
// The client wires the same catalog and ranking pipeline the HTTP API
// serves, without the HTTP layer in between:
//
//	client, _ := shopsearch.New(ctx,
//	    shopsearch.WithRedis("localhost:6379", ""),
//	    shopsearch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	page, _ := client.Search(ctx, "waterproof hiking boots", &shopsearch.SearchOptions{
//	    Filters: shopsearch.Filters{Category: "footwear"},
//	    Limit:   10,
//	})
//	for _, hit := range page.Results {
//	    fmt.Println(hit.Product.Title, hit.Score)
//	}
//
// Without an embedder, browse and field-sorted queries work; free-text
// queries degrade to a popularity ordering.
package shopsearch
