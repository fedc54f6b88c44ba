package config

import (
	"github.com/joho/godotenv"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/util"
)

// ReadEnvFiles reads dotenv files in order without touching the process
// environment. Later files win.
func ReadEnvFiles(paths ...string) (*collections.StringMap, error) {
	env := collections.NewStringMap()
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, errors.InvalidConfig(path, "unable to read env file").WithCause(err)
		}
		env.Merge(collections.StringMapFrom(values))
	}
	return env, nil
}

// ParseEnvPairs parses KEY=VALUE pairs as given to --env.
func ParseEnvPairs(pairs []string) (*collections.StringMap, error) {
	env := collections.NewStringMap()
	for _, pair := range pairs {
		key, value, err := util.ParseKeyValue(pair)
		if err != nil {
			return nil, errors.InvalidConfig("--env", err.Error())
		}
		env.Set(key, value)
	}
	return env, nil
}

// Environment builds the run environment: base (usually os.Environ()), then
// the env files, then the Env pairs.
func (c *RunnerConfig) Environment(base []string) (*collections.StringMap, error) {
	env := collections.ParseEnviron(base)

	files, err := ReadEnvFiles(c.EnvFiles...)
	if err != nil {
		return nil, err
	}
	env.Merge(files)

	pairs, err := ParseEnvPairs(c.Env)
	if err != nil {
		return nil, err
	}
	env.Merge(pairs)
	return env, nil
}
