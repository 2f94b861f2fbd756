package session

import (
	"fmt"
	"log"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/scandesk/scandesk/internal/models"
)

// noteDeployment watches the deployment version stamped on upload receipts
// and logs when the backend rolls to a different release mid-session. A
// version change can explain sudden casing or status-vocabulary shifts.
func (s *Session) noteDeployment(dep *models.DeploymentInfo) {
	if dep == nil || dep.Version == "" {
		return
	}
	s.mu.Lock()
	prev := s.lastVersion
	s.lastVersion = dep.Version
	s.mu.Unlock()

	if prev == "" || prev == dep.Version {
		return
	}
	cmp, err := compareVersions(prev, dep.Version)
	switch {
	case err != nil:
		log.Printf("Backend deployment changed from %s to %s", prev, dep.Version)
	case cmp < 0:
		log.Printf("Backend deployment upgraded from %s to %s", prev, dep.Version)
	case cmp > 0:
		log.Printf("Backend deployment rolled back from %s to %s", prev, dep.Version)
	}
}

// compareVersions compares two version strings semantically.
// Returns:
// - -1 if v1 < v2
// - 0 if v1 == v2
// - 1 if v1 > v2
func compareVersions(v1, v2 string) (int, error) {
	// Strip leading 'v' if present (common in version strings)
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	version1, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version %s: %w", v1, err)
	}

	version2, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version %s: %w", v2, err)
	}

	return version1.Compare(version2), nil
}
