package config

import (
	"net"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDSN returns the configured DSN, or one assembled from the discrete
// connection fields.
func (c DatabaseRuntimeConfig) MySQLDSN() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = resolveLocation(c.Loc)
	mc.Params = map[string]string{"charset": c.Charset}
	for k, v := range c.Params {
		mc.Params[k] = v
	}
	return mc.FormatDSN()
}

func resolveLocation(name string) *time.Location {
	if name == "" || strings.EqualFold(name, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// RedisURLValue returns the explicit redis_url, or one assembled from the
// redis section when it is enabled. Empty means Redis is off.
func (c *AppConfig) RedisURLValue() string {
	if c.RedisURL != "" {
		return c.RedisURL
	}
	if c.Redis.Enable {
		return c.Redis.URL()
	}
	return ""
}

// URL assembles a redis:// URL from the discrete fields.
func (c RedisRuntimeConfig) URL() string {
	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}
	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	if username != "" || password != "" {
		u.User = neturl.UserPassword(username, password)
	}
	return u.String()
}
