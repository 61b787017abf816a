package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
	"gorm.io/gorm"
)

// withModel adds the common columns to an entity payload.
func withModel(model gorm.Model, state *db.Publishing, fields gin.H) gin.H {
	fields["id"] = model.ID
	fields["created_at"] = model.CreatedAt
	fields["updated_at"] = model.UpdatedAt
	if state != nil {
		fields["published"] = state.Published
		fields["published_at"] = state.PublishedAt
		fields["sort_order"] = state.SortOrder
	}
	return fields
}

func heroPayload(hero *db.HeroContent) gin.H {
	return withModel(hero.Model, &hero.Publishing, gin.H{
		"title":     hero.Title,
		"subtitle":  hero.Subtitle,
		"cta_text":  hero.CTAText,
		"cta_link":  hero.CTALink,
		"image_url": hero.ImageURL,
		"media_id":  hero.MediaID,
	})
}

func eventPayload(event *db.Event) gin.H {
	return withModel(event.Model, &event.Publishing, gin.H{
		"title":            event.Title,
		"description":      event.Description,
		"location":         event.Location,
		"starts_at":        event.StartsAt,
		"ends_at":          event.EndsAt,
		"image_url":        event.ImageURL,
		"registration_url": event.RegistrationURL,
		"event_type":       event.EventType,
	})
}

func programPayload(program *db.Program) gin.H {
	return withModel(program.Model, &program.Publishing, gin.H{
		"title":       program.Title,
		"slug":        program.Slug,
		"summary":     program.Summary,
		"description": program.Description,
		"category":    program.Category,
		"duration":    program.Duration,
		"image_url":   program.ImageURL,
		"apply_url":   program.ApplyURL,
	})
}

func mentorTalkPayload(talk *db.MentorTalk) gin.H {
	payload := withModel(talk.Model, &talk.Publishing, gin.H{
		"title":          talk.Title,
		"speaker":        talk.Speaker,
		"speaker_role":   talk.SpeakerRole,
		"description":    talk.Description,
		"talk_date":      talk.TalkDate,
		"video_url":      talk.VideoURL,
		"thumbnail_url":  talk.ThumbnailURL,
		"embed_url":      nil,
		"video_platform": nil,
	})
	if embed, ok := service.ParseVideoEmbed(talk.VideoURL); ok {
		payload["embed_url"] = embed.EmbedURL
		payload["video_platform"] = embed.Platform
	}
	return payload
}

func teamMemberPayload(member *db.TeamMember) gin.H {
	return withModel(member.Model, &member.Publishing, gin.H{
		"name":         member.Name,
		"role":         member.Role,
		"bio":          member.Bio,
		"photo_url":    member.PhotoURL,
		"linkedin_url": member.LinkedInURL,
		"twitter_url":  member.TwitterURL,
		"email":        member.Email,
		"team":         member.Team,
	})
}

func testimonialPayload(item *db.Testimonial) gin.H {
	return withModel(item.Model, &item.Publishing, gin.H{
		"author":      item.Author,
		"author_role": item.AuthorRole,
		"quote":       item.Quote,
		"avatar_url":  item.AvatarURL,
		"rating":      item.Rating,
	})
}

func sectionPayload(section *db.Section) gin.H {
	return withModel(section.Model, &section.Publishing, gin.H{
		"key":     section.Key,
		"title":   section.Title,
		"content": section.Content,
	})
}

func mediaPayload(item *db.MediaItem) gin.H {
	return withModel(item.Model, nil, gin.H{
		"object_key":   item.ObjectKey,
		"file_name":    item.FileName,
		"content_type": item.ContentType,
		"size":         item.Size,
		"width":        item.Width,
		"height":       item.Height,
		"alt_text":     item.AltText,
		"url":          item.URL,
		"storage":      item.Storage,
		"uploaded_by":  item.UploadedBy,
	})
}

func userPayload(user *db.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"display_name":  user.DisplayName,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	}
}
