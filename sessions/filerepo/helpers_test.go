package filerepo_test

import "github.com/jrsteele09/go-elearn-client/models"

func adminFixture() models.Admin {
	return models.Admin{ID: "a-1", Email: "root@example.com", Role: models.RoleAdmin}
}

func userFixture() models.User {
	return models.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent}
}
