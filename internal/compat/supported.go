package compat

// SupportedVersions lists the Minecraft versions curation requests may
// target, newest first.
var SupportedVersions = []string{
	"1.21.1", "1.21", "1.20.6", "1.20.4", "1.20.2", "1.20.1", "1.20",
	"1.19.4", "1.19.2", "1.19", "1.18.2", "1.18.1", "1.18", "1.17.1",
	"1.16.5", "1.16.4", "1.12.2",
}

// SupportedLoaders lists the mod loaders curation requests may target.
var SupportedLoaders = []string{"fabric", "forge", "quilt", "neoforge"}

// SupportedVersion reports whether the version may be requested.
func SupportedVersion(version string) bool {
	for _, v := range SupportedVersions {
		if v == version {
			return true
		}
	}
	return false
}

// SupportedLoader reports whether the loader may be requested.
func SupportedLoader(loader string) bool {
	for _, l := range SupportedLoaders {
		if l == loader {
			return true
		}
	}
	return false
}
