package redisrepo_test

import "github.com/jrsteele09/go-elearn-client/models"

func adminFixture() models.Admin {
	return models.Admin{ID: "a-1", Email: "root@example.com", Role: models.RoleAdmin}
}
