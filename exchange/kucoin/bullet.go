package kucoin

import (
	"context"
	"net/http"
	"time"
)

//
// Bullet is the short-lived token and server list needed to open the private websocket feed.
//
type Bullet struct {
	Token           string           `json:"token"`
	InstanceServers []InstanceServer `json:"instanceServers"`
}

type InstanceServer struct {
	Endpoint     string `json:"endpoint"`
	Encrypt      bool   `json:"encrypt"`
	Protocol     string `json:"protocol"`
	PingInterval int64  `json:"pingInterval"`
	PingTimeout  int64  `json:"pingTimeout"`
}

func (o InstanceServer) PingEvery() time.Duration {
	return time.Duration(o.PingInterval) * time.Millisecond
}

func (o InstanceServer) PingDeadline() time.Duration {
	return time.Duration(o.PingTimeout) * time.Millisecond
}

// PrivateBullet requests a token for the private websocket feed.
func (o *Client) PrivateBullet(ctx context.Context) (*Response[Bullet], error) {
	return Do[Bullet](ctx, o, http.MethodPost, BulletPrivatePath, nil)
}
