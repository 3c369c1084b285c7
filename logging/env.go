package logging

import "os"

type EnvType string

const (
	DEV  = EnvType("dev")
	PROD = EnvType("prod")
	TEST = EnvType("test")
)

// GetEnvType reads the "env" variable and falls back to DEV for anything unknown.
func GetEnvType() EnvType {
	switch envType := EnvType(os.Getenv("env")); envType {
	case DEV, PROD, TEST:
		return envType
	default:
		return DEV
	}
}
