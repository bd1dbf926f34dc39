// Package urlutil provides domain helpers used when comparing the URL a
// measurement asked for with the URL it ended up on.
//
// Registrable domains are resolved with golang.org/x/net/publicsuffix so that
// "www.example.co.uk" and "static.example.co.uk" compare equal. IP literals
// have no registrable domain; they are compared as host:port instead.
package urlutil
