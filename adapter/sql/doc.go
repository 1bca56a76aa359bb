// Package sql provides adapter interfaces for database/sql drivers to work with txroute.
//
// # Interfaces
//
//   - [DB]: Wraps *sql.DB, the connection pool of one endpoint
//   - [Tx]: Satisfied by *sql.Tx, one transaction on one pooled connection
//
// # Usage
//
//	import (
//	    "database/sql"
//	    sqladapter "github.com/arloliu/txroute/adapter/sql"
//	    _ "github.com/lib/pq"
//	)
//
//	primary, _ := sql.Open("postgres", "postgres://primary:5432/app")
//	replica, _ := sql.Open("postgres", "postgres://replica1:5432/app")
//
//	router := txroute.NewRouter()
//	err := router.Configure(txroute.RouterConfig{
//	    Write:    txroute.Endpoint{Name: "primary", DB: sqladapter.WrapDB(primary)},
//	    Replicas: []txroute.Endpoint{{Name: "replica1", DB: sqladapter.WrapDB(replica)}},
//	})
//
// Connection acquisition, pool sizing and eviction stay with database/sql;
// the router only decides which pool a transaction is begun on.
package sql
