package vision

// Request and response bodies of images:annotate, PRODUCT_SEARCH feature only.

const featureProductSearch = "PRODUCT_SEARCH"

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image        image        `json:"image"`
	Features     []feature    `json:"features"`
	ImageContext imageContext `json:"imageContext"`
}

type image struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type imageContext struct {
	ProductSearchParams productSearchParams `json:"productSearchParams"`
}

type productSearchParams struct {
	ProductSet        string   `json:"productSet"`
	ProductCategories []string `json:"productCategories"`
	Filter            string   `json:"filter"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	ProductSearchResults *productSearchResults `json:"productSearchResults"`
	Error                *status               `json:"error"`
}

type status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type productSearchResults struct {
	Results []result `json:"results"`
}

type result struct {
	Product wireProduct `json:"product"`
	// Score is a pointer so an absent field can fall back to product.score.
	Score *float64 `json:"score"`
}

type wireProduct struct {
	Name            string      `json:"name"`
	DisplayName     string      `json:"displayName"`
	ProductCategory string      `json:"productCategory"`
	ProductLabels   []wireLabel `json:"productLabels"`
	Score           float64     `json:"score"`
}

type wireLabel struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// responseSchema is the minimum shape the results page can render. Only responses[0] is
// read, so only the first item is constrained.
const responseSchema = `{
  "type": "object",
  "required": ["responses"],
  "properties": {
    "responses": {
      "type": "array",
      "minItems": 1,
      "items": [{
        "type": "object",
        "required": ["productSearchResults"],
        "properties": {
          "productSearchResults": {
            "type": "object",
            "required": ["results"],
            "properties": {
              "results": {
                "type": "array",
                "items": {
                  "type": "object",
                  "required": ["product"],
                  "properties": {
                    "score": {"type": "number"},
                    "product": {
                      "type": "object",
                      "properties": {
                        "name": {"type": "string"},
                        "displayName": {"type": "string"},
                        "productCategory": {"type": "string"},
                        "score": {"type": "number"},
                        "productLabels": {
                          "type": "array",
                          "items": {
                            "type": "object",
                            "properties": {
                              "key": {"type": "string"},
                              "value": {"type": "string"}
                            }
                          }
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        }
      }]
    }
  }
}`
