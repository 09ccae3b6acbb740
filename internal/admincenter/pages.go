// Package admincenter wires the admin center service: the admin resource
// tree, the policy engine, storage, and the HTTP surface.
package admincenter

import (
	"github.com/kart-io/admin-guard/internal/admincenter/biz"
	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/internal/model"
	"github.com/kart-io/admin-guard/pkg/admin"
)

// userForm is the create/update schema of the user admin. The password is
// accepted here and encrypted by the business layer; it is readable by
// nobody because the model schema hides it.
type userForm struct {
	Username string `json:"username" title:"Username" binding:"required"`
	Password string `json:"password" title:"Password"`
	Email    string `json:"email" title:"Email"`
	Avatar   string `json:"avatar" title:"Avatar"`
	Salary   int64  `json:"salary" title:"Salary"`
	Status   int    `json:"status" title:"Status"`
}

// roleForm is the create/update schema of the role admin.
type roleForm struct {
	Key         string `json:"key" title:"Key" binding:"required"`
	Name        string `json:"name" title:"Name"`
	Description string `json:"description" title:"Description"`
	Status      int    `json:"status" title:"Status"`
}

// Pages holds the admin site and its registered pages.
type Pages struct {
	Site      *admin.Site
	UserAdmin *admin.SoftDeleteModelAdmin
	RoleAdmin *admin.AutoTimeModelAdmin
}

// ModelAdminByID resolves a registered model admin by its unique id.
func (p *Pages) ModelAdminByID(id string) *admin.ModelAdmin {
	switch id {
	case p.UserAdmin.UniqueID:
		return p.UserAdmin.ModelAdmin
	case p.RoleAdmin.UniqueID:
		return p.RoleAdmin.ModelAdmin
	}
	return nil
}

// BuildPages constructs the admin resource tree over the policy engine.
func BuildPages(enforcer admin.Enforcer, factory store.Factory, users *biz.UserService) (*Pages, error) {
	root := admin.NewAdmin("admin-site", admin.KindGroup, &admin.PageSchema{Label: "Admin", Sort: 100})
	site := admin.NewSite(root, enforcer)

	system := root.AddChild(admin.NewAdmin("system", admin.KindGroup,
		&admin.PageSchema{Label: "System", Sort: 10}))

	userSchema := admin.SchemaOf(&model.User{})
	formSchema := admin.SchemaOf(&userForm{})
	userAdmin := admin.NewModelAdmin(site, admin.ModelAdminConfig{
		ID:           "user-admin",
		Label:        "Users",
		Sort:         2,
		SchemaModel:  userSchema,
		SchemaList:   userSchema,
		SchemaFilter: userSchema,
		SchemaCreate: formSchema,
		SchemaUpdate: formSchema,
		SchemaRead:   userSchema,
		PermissionExclude: map[string][]string{
			"all": {"id", "create_time", "update_time", "delete_time"},
		},
		Reader: factory.TableReader("users", "delete_time IS NULL"),
	})
	system.AddChild(userAdmin.Admin)

	softUserAdmin, err := admin.NewSoftDeleteModelAdmin(userAdmin, users)
	if err != nil {
		return nil, err
	}

	roleSchema := admin.SchemaOf(&model.Role{})
	roleFormSchema := admin.SchemaOf(&roleForm{})
	roleAdmin := admin.NewModelAdmin(site, admin.ModelAdminConfig{
		ID:           "role-admin",
		Label:        "Roles",
		Sort:         1,
		SchemaModel:  roleSchema,
		SchemaList:   roleSchema,
		SchemaFilter: roleSchema,
		SchemaCreate: roleFormSchema,
		SchemaUpdate: roleFormSchema,
		SchemaRead:   roleSchema,
		PermissionExclude: map[string][]string{
			"all": {"id", "create_time", "update_time"},
		},
		Reader: factory.TableReader("roles", ""),
	})
	system.AddChild(roleAdmin.Admin)

	return &Pages{
		Site:      site,
		UserAdmin: softUserAdmin,
		RoleAdmin: admin.NewAutoTimeModelAdmin(roleAdmin),
	}, nil
}
