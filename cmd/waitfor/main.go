package main

import (
	"flag"
	"net"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	addrs    = flag.String("addrs", "localhost:27017", "comma-separated host:port list that must accept TCP connections")
	attempts = flag.Int("attempts", 20, "maximum attempts per address")
	interval = flag.Duration("interval", time.Second, "delay between attempts")
	timeout  = flag.Duration("timeout", 10*time.Second, "dial timeout")
)

func waitFor(addr string) bool {
	entry := log.WithField("addr", addr)
	for i := 1; i <= *attempts; i++ {
		conn, err := net.DialTimeout("tcp", addr, *timeout)
		if err == nil {
			_ = conn.Close()
			entry.Info("tcp connection available")
			return true
		}
		entry.WithError(err).WithField("attempt", i).Info("connection not yet available")
		time.Sleep(*interval)
	}
	return false
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	flag.Parse()

	for _, addr := range splitAddrs(*addrs) {
		if !waitFor(addr) {
			log.WithField("addr", addr).WithField("attempts", *attempts).Fatal("could not open tcp connection")
		}
	}
}

func splitAddrs(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
