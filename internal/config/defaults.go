package config

import (
	"github.com/hargabyte/erd/internal/codec"
	"github.com/hargabyte/erd/internal/codec/legacy"
	"github.com/hargabyte/erd/internal/codec/standard"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			EntityWidth:        standard.DefaultEntityWidth,
			EntityHeight:       standard.DefaultEntityHeight,
			RelationshipWidth:  standard.DefaultRelationshipWidth,
			RelationshipHeight: standard.DefaultRelationshipHeight,
		},
		Legacy: LegacyConfig{
			EntityWidth:        standard.DefaultEntityWidth,
			EntityHeight:       standard.DefaultEntityHeight,
			RelationshipWidth:  standard.DefaultRelationshipWidth,
			RelationshipHeight: standard.DefaultRelationshipHeight,
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8321",
			AssetDir: "",
		},
		Library: LibraryConfig{
			Path:         "",
			SnapshotKeep: 20,
		},
	}
}

// LegacyOptions converts the legacy section into the codec's option set.
func (c *Config) LegacyOptions() legacy.Options {
	return legacy.Options{
		EntityWidth:        c.Legacy.EntityWidth,
		EntityHeight:       c.Legacy.EntityHeight,
		RelationshipWidth:  c.Legacy.RelationshipWidth,
		RelationshipHeight: c.Legacy.RelationshipHeight,
	}
}

// StandardOptions converts the defaults section into the standard codec's
// fallback sizes for documents that omit shape dimensions.
func (c *Config) StandardOptions() standard.Options {
	return standard.Options{
		EntityWidth:        c.Defaults.EntityWidth,
		EntityHeight:       c.Defaults.EntityHeight,
		RelationshipWidth:  c.Defaults.RelationshipWidth,
		RelationshipHeight: c.Defaults.RelationshipHeight,
	}
}

// CodecOptions bundles both dialects' configured sizes for the dispatcher.
func (c *Config) CodecOptions() codec.Options {
	return codec.Options{
		Standard: c.StandardOptions(),
		Legacy:   c.LegacyOptions(),
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	// Merge Defaults config
	result.Defaults = mergeDefaultsConfig(loaded.Defaults, defaults.Defaults)

	// Merge Legacy config
	result.Legacy = mergeLegacyConfig(loaded.Legacy, defaults.Legacy)

	// Merge Server config
	result.Server = mergeServerConfig(loaded.Server, defaults.Server)

	// Merge Library config
	result.Library = mergeLibraryConfig(loaded.Library, defaults.Library)

	return result
}

func mergeDefaultsConfig(loaded, defaults DefaultsConfig) DefaultsConfig {
	return DefaultsConfig{
		EntityWidth:        nonZero(loaded.EntityWidth, defaults.EntityWidth),
		EntityHeight:       nonZero(loaded.EntityHeight, defaults.EntityHeight),
		RelationshipWidth:  nonZero(loaded.RelationshipWidth, defaults.RelationshipWidth),
		RelationshipHeight: nonZero(loaded.RelationshipHeight, defaults.RelationshipHeight),
	}
}

func mergeLegacyConfig(loaded, defaults LegacyConfig) LegacyConfig {
	return LegacyConfig{
		EntityWidth:        nonZero(loaded.EntityWidth, defaults.EntityWidth),
		EntityHeight:       nonZero(loaded.EntityHeight, defaults.EntityHeight),
		RelationshipWidth:  nonZero(loaded.RelationshipWidth, defaults.RelationshipWidth),
		RelationshipHeight: nonZero(loaded.RelationshipHeight, defaults.RelationshipHeight),
	}
}

func mergeServerConfig(loaded, defaults ServerConfig) ServerConfig {
	result := ServerConfig{}

	// Addr: use loaded if non-empty
	if loaded.Addr != "" {
		result.Addr = loaded.Addr
	} else {
		result.Addr = defaults.Addr
	}

	// AssetDir: use loaded if non-empty (empty means embedded assets)
	if loaded.AssetDir != "" {
		result.AssetDir = loaded.AssetDir
	} else {
		result.AssetDir = defaults.AssetDir
	}

	return result
}

func mergeLibraryConfig(loaded, defaults LibraryConfig) LibraryConfig {
	result := LibraryConfig{}

	// Path: use loaded if non-empty (empty means <config dir>/library.db)
	if loaded.Path != "" {
		result.Path = loaded.Path
	} else {
		result.Path = defaults.Path
	}

	// SnapshotKeep: use loaded if non-zero
	if loaded.SnapshotKeep != 0 {
		result.SnapshotKeep = loaded.SnapshotKeep
	} else {
		result.SnapshotKeep = defaults.SnapshotKeep
	}

	return result
}

func nonZero(loaded, fallback float64) float64 {
	if loaded != 0 {
		return loaded
	}
	return fallback
}
