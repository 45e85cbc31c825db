package store

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNeo4j    = "neo4j"
	DriverMemory   = "memory"
)

// Neo4jConfig holds the bolt connection used by the graph store.
type Neo4jConfig struct {
	URI      string `json:"uri" yaml:"uri"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// StoreConfig selects the task store backend.
type StoreConfig struct {
	Driver string      `json:"driver" yaml:"driver"`
	DSN    string      `json:"dsn" yaml:"dsn"` // sqlite file path or postgres URL; "" uses the data dir
	Neo4j  Neo4jConfig `json:"neo4j" yaml:"neo4j"`
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Driver: DriverSQLite,
		Neo4j:  Neo4jConfig{URI: "neo4j://localhost:7687", User: "neo4j"},
	}
}
