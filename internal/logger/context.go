package logger

// Component-specific logger functions

// DB returns a logger for database operations
func DB() Logger {
	return WithField("component", "db")
}

// Store returns a logger for domain operations on users, todos and categories
func Store() Logger {
	return WithField("component", "store")
}

// Migration returns a logger for schema migration operations
func Migration() Logger {
	return WithField("component", "migration")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// Config returns a logger for configuration loading
func Config() Logger {
	return WithField("component", "config")
}
