package scache

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client talks to a remote Server.
type Client struct {
	addr     string
	grpcConn *grpc.ClientConn
}

// NewClient connects to addr with insecure transport credentials. Extra dial
// options are applied after the defaults.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial server: %w", err)
	}

	return &Client{
		addr:     addr,
		grpcConn: conn,
	}, nil
}

// Get fetches key from cache. A miss returns false and no error.
func (c *Client) Get(ctx context.Context, cache, key string) ([]byte, bool, error) {
	out := new(wrapperspb.BytesValue)
	err := c.grpcConn.Invoke(withRoute(ctx, cache, key), methodGet, &emptypb.Empty{}, out)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get value from %s: %w", c.addr, err)
	}
	return out.GetValue(), true, nil
}

func (c *Client) Put(ctx context.Context, cache, key string, value []byte) error {
	err := c.grpcConn.Invoke(withRoute(ctx, cache, key), methodPut, wrapperspb.Bytes(value), new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("failed to put value to %s: %w", c.addr, err)
	}
	return nil
}

// Remove deletes key from cache and reports whether a value was removed.
func (c *Client) Remove(ctx context.Context, cache, key string) (bool, error) {
	out := new(wrapperspb.BoolValue)
	err := c.grpcConn.Invoke(withRoute(ctx, cache, key), methodRemove, &emptypb.Empty{}, out)
	if err != nil {
		return false, fmt.Errorf("failed to remove value from %s: %w", c.addr, err)
	}
	return out.GetValue(), nil
}

func (c *Client) Clear(ctx context.Context, cache string) error {
	err := c.grpcConn.Invoke(withRoute(ctx, cache, ""), methodClear, &emptypb.Empty{}, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("failed to clear %s on %s: %w", cache, c.addr, err)
	}
	return nil
}

func (c *Client) Close() error {
	if c.grpcConn != nil {
		return c.grpcConn.Close()
	}
	return nil
}

func (c *Client) Addr() string {
	return c.addr
}

func withRoute(ctx context.Context, cache, key string) context.Context {
	kv := []string{metadataCache, cache}
	if key != "" {
		kv = append(kv, metadataKey, key)
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}
