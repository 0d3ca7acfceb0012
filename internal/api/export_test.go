package api

import "time"

// SetSocketKeepalive shortens the socket pong wait and ping period and returns a restore func.
func SetSocketKeepalive(pongWait, pingPeriod time.Duration) func() {
	prevWait, prevPeriod := socketPongWait, socketPingPeriod
	socketPongWait, socketPingPeriod = pongWait, pingPeriod
	return func() { socketPongWait, socketPingPeriod = prevWait, prevPeriod }
}
