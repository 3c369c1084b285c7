package feed

type state int

const (
	disconnected state = iota // The feed service has not yet attempted to connect to the private websocket API.
	connecting                // The feed service has a bullet token and is dialing one of its instance servers.
	connected                 // The feed service has been welcomed by the instance server.
	subscribed                // Every registered topic has been acknowledged and messages are being published.
)

func (o state) String() string {
	return [...]string{"disconnected", "connecting", "connected", "subscribed"}[o]
}
