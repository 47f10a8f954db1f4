// Copyright 2021 JD Fergason
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

var (
	// commitHash contains the current Git revision.
	// Use mage to build to make sure this gets set.
	commitHash string

	// buildDate contains the date of the current build.
	buildDate string

	// vendorInfo contains vendor notes about the current build.
	vendorInfo string
)

// Version represents a SemVer 2.0.0 compatible build version
type Version struct {
	// Increment this for backwards incompatible changes
	Major int

	// Increment this for feature releases
	Minor int

	// Increment this for bug releases
	Patch int

	// Suffix is appended to pre-release version strings.
	// It will be blank for release versions.
	Suffix string
}

// dependencyList returns the modules compiled into the binary sorted by path, one per line as
// "path version". Replaced modules name their replacement.
func dependencyList(bi *debug.BuildInfo) []string {
	deps := make([]string, 0, len(bi.Deps))
	for _, dep := range bi.Deps {
		line := fmt.Sprintf("%s %s", dep.Path, dep.Version)
		if dep.Replace != nil {
			line += fmt.Sprintf(" => %s %s", dep.Replace.Path, dep.Replace.Version)
		}
		deps = append(deps, line)
	}

	sort.Strings(deps)
	return deps
}

// vcsSetting returns a setting stamped by the go tool, e.g. vcs.revision, or "" when absent
func vcsSetting(bi *debug.BuildInfo, key string) string {
	for _, setting := range bi.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func (v Version) String() string {
	metadata := ""
	preRelease := ""

	if v.Suffix != "" {
		preRelease = fmt.Sprintf("-%s", v.Suffix)
		if commitHash != "" {
			metadata = fmt.Sprintf("+%s", strings.ToLower(commitHash))
		}
	}

	return fmt.Sprintf("%d.%d.%d%s%s", v.Major, v.Minor, v.Patch, preRelease, metadata)
}

// BuildVersionString creates a version string. This is what you see when
// running "pvstress version"; withDeps appends the module dependency list. Builds made without
// mage fall back to the revision and time stamped by the go tool.
func BuildVersionString(withDeps bool) string {
	program := "pvstress"

	version := "v" + CurrentVersion.String()

	osArch := runtime.GOOS + "/" + runtime.GOARCH
	goVersion := runtime.Version()

	bi, hasBuildInfo := debug.ReadBuildInfo()

	commit := commitHash
	date := buildDate
	if hasBuildInfo {
		if commit == "" {
			commit = vcsSetting(bi, "vcs.revision")
		}
		if date == "" {
			date = vcsSetting(bi, "vcs.time")
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}

	versionString := fmt.Sprintf(`%s %s %s

Build Date: %s
Commit: %s
Built with: %s`,
		program, version, osArch, date, commit, goVersion)

	if vendorInfo != "" {
		versionString += "\nVendor Info: " + vendorInfo
	}

	if withDeps && hasBuildInfo {
		versionString += "\n\nDependencies:\n\n" + strings.Join(dependencyList(bi), "\n")
	}

	return versionString
}
