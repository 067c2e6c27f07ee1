// Package registry announces a running cache server in etcd so clients can
// find it.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const keyPrefix = "/services/"

type Config struct {
	Endpoints   []string      `yaml:"endpoints"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// LeaseTTL is the lease lifetime in seconds.
	LeaseTTL int64 `yaml:"lease_ttl"`
}

var ErrNoEndpoints = errors.New("registry: no etcd endpoints configured")

func (c Config) Enabled() bool {
	return len(c.Endpoints) > 0
}

// ServiceKey is the etcd key a server is registered under.
func ServiceKey(serviceName, addr string) string {
	return fmt.Sprintf("%s%s/%s", keyPrefix, serviceName, addr)
}

// ServicePrefix is the key prefix shared by every server of serviceName.
func ServicePrefix(serviceName string) string {
	return keyPrefix + serviceName + "/"
}

// Register puts addr under the service key with a lease and keeps the lease
// alive until stopCh is closed, after which the lease is revoked.
func Register(cfg Config, serviceName, addr string, stopCh <-chan error) error {
	if !cfg.Enabled() {
		return ErrNoEndpoints
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create etcd client: %w", err)
	}

	ttl := cfg.LeaseTTL
	if ttl <= 0 {
		ttl = 10
	}
	lease, err := client.Grant(context.Background(), ttl)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to create lease: %w", err)
	}

	key := ServiceKey(serviceName, addr)
	_, err = client.Put(context.Background(), key, addr, clientv3.WithLease(lease.ID))
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to put key-value to etcd: %w", err)
	}

	keepAliveCh, err := client.KeepAlive(context.Background(), lease.ID)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to keep lease alive: %w", err)
	}

	go func() {
		defer client.Close()
		for {
			select {
			case <-stopCh:
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				if _, err := client.Revoke(ctx, lease.ID); err != nil {
					logrus.Warnf("failed to revoke lease for %s: %v", key, err)
				}
				cancel()
				return
			case _, ok := <-keepAliveCh:
				if !ok {
					logrus.Warnf("keep alive channel closed for %s", key)
					return
				}
			}
		}
	}()
	logrus.Infof("Service registered: %s at %s", serviceName, addr)
	return nil
}

// Discover lists the addresses currently registered for serviceName.
func Discover(ctx context.Context, cfg Config, serviceName string) ([]string, error) {
	if !cfg.Enabled() {
		return nil, ErrNoEndpoints
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	defer client.Close()

	resp, err := client.Get(ctx, ServicePrefix(serviceName), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}

	addrs := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		if addr := string(kv.Value); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs, nil
}
