// Package taxonomy holds the fixed role-to-skills table and resolves free-text job roles against it.
package taxonomy

import "strings"

// FallbackRole is used when a job role matches no entry.
const FallbackRole = "software engineer"

// Role is one entry of the skill taxonomy.
type Role struct {
	Name   string
	Skills []string
}

// roles is ordered: substring resolution returns the first entry that matches.
var roles = []Role{
	{Name: "python developer", Skills: []string{"python", "django", "flask", "sql", "git", "rest api", "fastapi", "pandas", "numpy"}},
	{Name: "data analyst", Skills: []string{"python", "pandas", "numpy", "sql", "excel", "power bi", "tableau", "statistics", "visualization"}},
	{Name: "frontend developer", Skills: []string{"html", "css", "javascript", "react", "vue", "angular", "git", "responsive design", "bootstrap"}},
	{Name: "backend developer", Skills: []string{"python", "java", "node.js", "express", "django", "flask", "sql", "mongodb", "rest api", "graphql"}},
	{Name: "full stack developer", Skills: []string{"html", "css", "javascript", "react", "node.js", "python", "sql", "mongodb", "git", "rest api"}},
	{Name: "data scientist", Skills: []string{"python", "pandas", "numpy", "machine learning", "tensorflow", "pytorch", "sql", "statistics", "data visualization"}},
	{Name: "devops engineer", Skills: []string{"docker", "kubernetes", "jenkins", "aws", "azure", "linux", "terraform", "git", "ci/cd"}},
	{Name: "software engineer", Skills: []string{"python", "java", "c++", "git", "sql", "data structures", "algorithms", "object-oriented programming"}},
	{Name: "machine learning engineer", Skills: []string{"python", "tensorflow", "pytorch", "machine learning", "deep learning", "sql", "pandas", "numpy", "scikit-learn"}},
	{Name: "android developer", Skills: []string{"java", "kotlin", "android", "xml", "json", "rest api", "git", "firebase"}},
	{Name: "ios developer", Skills: []string{"swift", "objective-c", "ios", "xcode", "cocoa", "rest api", "git", "core data"}},
	{Name: "ui/ux designer", Skills: []string{"figma", "sketch", "adobe xd", "photoshop", "illustrator", "wireframing", "prototyping", "user research"}},
	{Name: "cloud engineer", Skills: []string{"aws", "azure", "gcp", "docker", "kubernetes", "linux", "networking", "security"}},
	{Name: "qa engineer", Skills: []string{"selenium", "test cases", "automation", "manual testing", "jira", "python", "api testing", "jenkins"}},
	{Name: "business analyst", Skills: []string{"sql", "excel", "powerpoint", "data analysis", "requirement gathering", "tableau", "communication"}},
}

// Roles returns a copy of the taxonomy in enumeration order.
func Roles() []Role {
	out := make([]Role, len(roles))
	for i, r := range roles {
		out[i] = Role{Name: r.Name, Skills: append([]string(nil), r.Skills...)}
	}
	return out
}

// RoleNames returns the role keys in enumeration order.
func RoleNames() []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}

// Resolve maps a free-text job role to a taxonomy entry and returns the entry's name and a copy of its skills.
//
// The role is lowercased and trimmed. An exact key wins; otherwise the first key (in enumeration order)
// that contains the role, or is contained in it, is used; otherwise FallbackRole. An empty role is a
// substring of every key and therefore resolves to the first entry.
func Resolve(jobRole string) (string, []string) {
	role := strings.ToLower(strings.TrimSpace(jobRole))

	for _, r := range roles {
		if r.Name == role {
			return r.Name, append([]string(nil), r.Skills...)
		}
	}

	for _, r := range roles {
		if strings.Contains(r.Name, role) || strings.Contains(role, r.Name) {
			return r.Name, append([]string(nil), r.Skills...)
		}
	}

	for _, r := range roles {
		if r.Name == FallbackRole {
			return r.Name, append([]string(nil), r.Skills...)
		}
	}
	return FallbackRole, nil
}

// ResolveRole returns the required skills for a job role. It never fails.
func ResolveRole(jobRole string) []string {
	_, skills := Resolve(jobRole)
	return skills
}
