package requestdata

import (
  "context"
)

type key struct{}

var requestDataKey key

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData carries the browser's current conversation through a request.
type RequestData struct {
  ChatID      string
  NewChat     bool
}
