package llm

import (
	"context"
)

// scriptedClient fails with the scripted errors in order, then succeeds.
type scriptedClient struct {
	errs     []error
	response string
	calls    int
}

func (c *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.calls++
	if c.calls <= len(c.errs) && c.errs[c.calls-1] != nil {
		return "", c.errs[c.calls-1]
	}
	return c.response, nil
}

type scriptedEmbedder struct {
	errs   []error
	vector []float32
	calls  int
}

func (c *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	if c.calls <= len(c.errs) && c.errs[c.calls-1] != nil {
		return nil, c.errs[c.calls-1]
	}
	return c.vector, nil
}
