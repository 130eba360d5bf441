package support

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopassist/shopsearch/pkg/types"
)

// LoadFile reads externally produced support documents (scraped policies,
// exported knowledge bases) from a JSON file. Documents without a source get
// the scraped label.
func LoadFile(path string) ([]types.SupportDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read support docs: %w", err)
	}

	var docs []types.SupportDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode support docs: %w", err)
	}
	for i := range docs {
		if docs[i].Source == "" {
			docs[i].Source = SourceScraped
		}
	}
	return docs, nil
}
