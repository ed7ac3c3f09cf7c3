// Package graphql exposes the tracker services as a GraphQL endpoint. Field
// names follow the JSON names of the REST API.
package graphql

import (
	gql "github.com/graphql-go/graphql"
)

var userType = gql.NewObject(gql.ObjectConfig{
	Name: "User",
	Fields: gql.Fields{
		"id":         &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"username":   &gql.Field{Type: gql.NewNonNull(gql.String)},
		"created_at": &gql.Field{Type: gql.DateTime},
		"updated_at": &gql.Field{Type: gql.DateTime},
	},
})

var sessionType = gql.NewObject(gql.ObjectConfig{
	Name: "Session",
	Fields: gql.Fields{
		"token":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"expires_at": &gql.Field{Type: gql.NewNonNull(gql.DateTime)},
		"user":       &gql.Field{Type: gql.NewNonNull(userType)},
	},
})

var labelType = gql.NewObject(gql.ObjectConfig{
	Name: "Label",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"name":        &gql.Field{Type: gql.NewNonNull(gql.String)},
		"color":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"description": &gql.Field{Type: gql.String},
		"created_at":  &gql.Field{Type: gql.DateTime},
		"updated_at":  &gql.Field{Type: gql.DateTime},
	},
})

var milestoneType = gql.NewObject(gql.ObjectConfig{
	Name: "Milestone",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"title":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"description": &gql.Field{Type: gql.String},
		"due_date":    &gql.Field{Type: gql.String},
		"status":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"created_at":  &gql.Field{Type: gql.DateTime},
		"updated_at":  &gql.Field{Type: gql.DateTime},
	},
})

var issueType = gql.NewObject(gql.ObjectConfig{
	Name: "Issue",
	Fields: gql.Fields{
		"id":           &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"title":        &gql.Field{Type: gql.NewNonNull(gql.String)},
		"description":  &gql.Field{Type: gql.String},
		"status":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"priority":     &gql.Field{Type: gql.NewNonNull(gql.String)},
		"assignee":     &gql.Field{Type: gql.String},
		"creator":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"milestone_id": &gql.Field{Type: gql.ID},
		"labels":       &gql.Field{Type: gql.NewList(gql.NewNonNull(labelType))},
		"created_at":   &gql.Field{Type: gql.DateTime},
		"updated_at":   &gql.Field{Type: gql.DateTime},
	},
})

var commentType = gql.NewObject(gql.ObjectConfig{
	Name: "Comment",
	Fields: gql.Fields{
		"id":         &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"issue_id":   &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"content":    &gql.Field{Type: gql.NewNonNull(gql.String)},
		"author":     &gql.Field{Type: gql.NewNonNull(gql.String)},
		"created_at": &gql.Field{Type: gql.DateTime},
		"updated_at": &gql.Field{Type: gql.DateTime},
	},
})

var paginationType = gql.NewObject(gql.ObjectConfig{
	Name: "Pagination",
	Fields: gql.Fields{
		"page":        &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"per_page":    &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"total":       &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"total_pages": &gql.Field{Type: gql.NewNonNull(gql.Int)},
	},
})

func pageType(name string, item *gql.Object) *gql.Object {
	return gql.NewObject(gql.ObjectConfig{
		Name: name,
		Fields: gql.Fields{
			"items":      &gql.Field{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(item)))},
			"pagination": &gql.Field{Type: gql.NewNonNull(paginationType)},
		},
	})
}

var (
	issuePageType     = pageType("IssuePage", issueType)
	labelPageType     = pageType("LabelPage", labelType)
	commentPageType   = pageType("CommentPage", commentType)
	milestonePageType = pageType("MilestonePage", milestoneType)
)

func inputType(name string, fields gql.InputObjectConfigFieldMap) *gql.InputObject {
	return gql.NewInputObject(gql.InputObjectConfig{Name: name, Fields: fields})
}

var (
	createIssueInput = inputType("CreateIssueInput", gql.InputObjectConfigFieldMap{
		"title":        &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"description":  &gql.InputObjectFieldConfig{Type: gql.String},
		"status":       &gql.InputObjectFieldConfig{Type: gql.String},
		"priority":     &gql.InputObjectFieldConfig{Type: gql.String},
		"assignee":     &gql.InputObjectFieldConfig{Type: gql.String},
		"creator":      &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"milestone_id": &gql.InputObjectFieldConfig{Type: gql.ID},
		"labels":       &gql.InputObjectFieldConfig{Type: gql.NewList(gql.NewNonNull(gql.ID))},
	})
	updateIssueInput = inputType("UpdateIssueInput", gql.InputObjectConfigFieldMap{
		"title":        &gql.InputObjectFieldConfig{Type: gql.String},
		"description":  &gql.InputObjectFieldConfig{Type: gql.String},
		"status":       &gql.InputObjectFieldConfig{Type: gql.String},
		"priority":     &gql.InputObjectFieldConfig{Type: gql.String},
		"assignee":     &gql.InputObjectFieldConfig{Type: gql.String},
		"milestone_id": &gql.InputObjectFieldConfig{Type: gql.ID},
		"labels":       &gql.InputObjectFieldConfig{Type: gql.NewList(gql.NewNonNull(gql.ID))},
	})
	createLabelInput = inputType("CreateLabelInput", gql.InputObjectConfigFieldMap{
		"name":        &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"color":       &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"description": &gql.InputObjectFieldConfig{Type: gql.String},
	})
	updateLabelInput = inputType("UpdateLabelInput", gql.InputObjectConfigFieldMap{
		"name":        &gql.InputObjectFieldConfig{Type: gql.String},
		"color":       &gql.InputObjectFieldConfig{Type: gql.String},
		"description": &gql.InputObjectFieldConfig{Type: gql.String},
	})
	createCommentInput = inputType("CreateCommentInput", gql.InputObjectConfigFieldMap{
		"issue_id": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.ID)},
		"content":  &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"author":   &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
	})
	updateCommentInput = inputType("UpdateCommentInput", gql.InputObjectConfigFieldMap{
		"content": &gql.InputObjectFieldConfig{Type: gql.String},
	})
	createMilestoneInput = inputType("CreateMilestoneInput", gql.InputObjectConfigFieldMap{
		"title":       &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"description": &gql.InputObjectFieldConfig{Type: gql.String},
		"due_date":    &gql.InputObjectFieldConfig{Type: gql.String},
		"status":      &gql.InputObjectFieldConfig{Type: gql.String},
	})
	updateMilestoneInput = inputType("UpdateMilestoneInput", gql.InputObjectConfigFieldMap{
		"title":       &gql.InputObjectFieldConfig{Type: gql.String},
		"description": &gql.InputObjectFieldConfig{Type: gql.String},
		"due_date":    &gql.InputObjectFieldConfig{Type: gql.String},
		"status":      &gql.InputObjectFieldConfig{Type: gql.String},
	})
)

func idArg() gql.FieldConfigArgument {
	return gql.FieldConfigArgument{"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)}}
}

func pageArgs(extra gql.FieldConfigArgument) gql.FieldConfigArgument {
	args := gql.FieldConfigArgument{
		"page":     &gql.ArgumentConfig{Type: gql.Int},
		"per_page": &gql.ArgumentConfig{Type: gql.Int},
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func inputArg(t *gql.InputObject) gql.FieldConfigArgument {
	return gql.FieldConfigArgument{"input": &gql.ArgumentConfig{Type: gql.NewNonNull(t)}}
}

func idAndInputArgs(t *gql.InputObject) gql.FieldConfigArgument {
	args := inputArg(t)
	args["id"] = &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)}
	return args
}

// NewSchema builds the executable schema with r's resolvers.
func NewSchema(r *Resolver) (gql.Schema, error) {
	credentials := gql.FieldConfigArgument{
		"username": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
		"password": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
	}

	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"me":    &gql.Field{Type: userType, Resolve: r.authed(r.me)},
			"issue": &gql.Field{Type: issueType, Args: idArg(), Resolve: r.authed(r.issue)},
			"issues": &gql.Field{
				Type: issuePageType,
				Args: pageArgs(gql.FieldConfigArgument{
					"status":   &gql.ArgumentConfig{Type: gql.String},
					"priority": &gql.ArgumentConfig{Type: gql.String},
				}),
				Resolve: r.authed(r.issues),
			},
			"label":   &gql.Field{Type: labelType, Args: idArg(), Resolve: r.authed(r.label)},
			"labels":  &gql.Field{Type: labelPageType, Args: pageArgs(nil), Resolve: r.authed(r.labels)},
			"comment": &gql.Field{Type: commentType, Args: idArg(), Resolve: r.authed(r.comment)},
			"comments": &gql.Field{
				Type: commentPageType,
				Args: pageArgs(gql.FieldConfigArgument{
					"issue_id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				}),
				Resolve: r.authed(r.comments),
			},
			"milestone": &gql.Field{Type: milestoneType, Args: idArg(), Resolve: r.authed(r.milestone)},
			"milestones": &gql.Field{
				Type: milestonePageType,
				Args: pageArgs(gql.FieldConfigArgument{
					"status": &gql.ArgumentConfig{Type: gql.String},
				}),
				Resolve: r.authed(r.milestones),
			},
		},
	})

	mutation := gql.NewObject(gql.ObjectConfig{
		Name: "Mutation",
		Fields: gql.Fields{
			"register": &gql.Field{Type: userType, Args: credentials, Resolve: r.public(r.register)},
			"login":    &gql.Field{Type: sessionType, Args: credentials, Resolve: r.public(r.login)},
			"logout":   &gql.Field{Type: gql.NewNonNull(gql.Boolean), Resolve: r.public(r.logout)},

			"createIssue": &gql.Field{Type: issueType, Args: inputArg(createIssueInput), Resolve: r.authed(r.createIssue)},
			"updateIssue": &gql.Field{Type: issueType, Args: idAndInputArgs(updateIssueInput), Resolve: r.authed(r.updateIssue)},
			"deleteIssue": &gql.Field{Type: gql.NewNonNull(gql.Boolean), Args: idArg(), Resolve: r.authed(r.deleteIssue)},

			"createLabel": &gql.Field{Type: labelType, Args: inputArg(createLabelInput), Resolve: r.authed(r.createLabel)},
			"updateLabel": &gql.Field{Type: labelType, Args: idAndInputArgs(updateLabelInput), Resolve: r.authed(r.updateLabel)},
			"deleteLabel": &gql.Field{Type: gql.NewNonNull(gql.Boolean), Args: idArg(), Resolve: r.authed(r.deleteLabel)},

			"createComment": &gql.Field{Type: commentType, Args: inputArg(createCommentInput), Resolve: r.authed(r.createComment)},
			"updateComment": &gql.Field{Type: commentType, Args: idAndInputArgs(updateCommentInput), Resolve: r.authed(r.updateComment)},
			"deleteComment": &gql.Field{Type: gql.NewNonNull(gql.Boolean), Args: idArg(), Resolve: r.authed(r.deleteComment)},

			"createMilestone": &gql.Field{Type: milestoneType, Args: inputArg(createMilestoneInput), Resolve: r.authed(r.createMilestone)},
			"updateMilestone": &gql.Field{Type: milestoneType, Args: idAndInputArgs(updateMilestoneInput), Resolve: r.authed(r.updateMilestone)},
			"deleteMilestone": &gql.Field{Type: gql.NewNonNull(gql.Boolean), Args: idArg(), Resolve: r.authed(r.deleteMilestone)},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: query, Mutation: mutation})
}
