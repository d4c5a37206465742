package main

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/models"
	"github.com/bricesome/SoireClash/utils"
)

const maxImageSizeBytes int64 = 5 * 1024 * 1024
const maxVideoSizeBytes int64 = 50 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var videoMimeTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
}

// saveUpload streams a multipart file under the media root and records it.
// Returns the public URL path.
func saveUpload(c *gin.Context, file *multipart.FileHeader, dir string, maxSize int64, allowed map[string]bool) (string, error) {
	if file.Size > maxSize {
		return "", fmt.Errorf("file size exceeds %dMB limit", maxSize/(1024*1024))
	}
	mimeType := file.Header.Get("Content-Type")
	if !allowed[mimeType] {
		return "", errors.New("unsupported file type")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		return "", errors.New("file extension is required")
	}

	name := utils.GenerateUniqueFilename() + ext
	dest := filepath.Join(config.GetMediaRoot(), dir, name)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		return "", err
	}

	relPath := path.Join(dir, name)
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	record := models.MediaFile{
		Path:         relPath,
		ContentType:  mimeType,
		SizeBytes:    file.Size,
		UploadedById: userId,
	}
	if err := models.RecordMediaFile(c.Request.Context(), &record); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "server", "saveUpload", "RecordMediaFile", logrus.Fields{"path": relPath}, err)
	}
	return "/media/" + relPath, nil
}

// createThumbnail writes a 200px-wide JPEG next to the media root's
// thumbnail directory for the given stored image.
func createThumbnail(storedURL string, thumbDir string) (string, error) {
	relPath := strings.TrimPrefix(storedURL, "/media/")
	src := filepath.Join(config.GetMediaRoot(), relPath)

	img, err := imaging.Open(src)
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	name := strings.TrimSuffix(path.Base(relPath), filepath.Ext(relPath)) + ".jpg"
	dest := filepath.Join(config.GetMediaRoot(), thumbDir, name)
	if err := imaging.Save(thumbnail, dest); err != nil {
		return "", err
	}
	return "/media/" + path.Join(thumbDir, name), nil
}

// uploadMembershipVideoHandler attaches the presentation video (and an
// optional poster image) to a pending membership request. Public: the
// applicant has no account yet.
func uploadMembershipVideoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		request, err := models.GetMembershipRequestById(ctx, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}
		if request.Status != models.MembershipStatusPending {
			badRequest(c, errors.New("request is already decided"))
			return
		}

		video, err := c.FormFile("video")
		if err != nil {
			badRequest(c, errors.New("video file is required"))
			return
		}
		videoURL, err := saveUpload(c, video, "videos/demandes", maxVideoSizeBytes, videoMimeTypes)
		if err != nil {
			badRequest(c, err)
			return
		}

		thumbnailURL := ""
		if poster, err := c.FormFile("poster"); err == nil {
			posterURL, err := saveUpload(c, poster, "miniatures/demandes", maxImageSizeBytes, imageMimeTypes)
			if err != nil {
				badRequest(c, err)
				return
			}
			thumbnailURL = posterURL
		}

		db := config.GetDB()
		err = db.WithContext(ctx).Model(&models.MembershipRequest{}).
			Where("id = ?", request.ID).
			Updates(map[string]interface{}{
				"video_url":     videoURL,
				"thumbnail_url": thumbnailURL,
			}).Error
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"video_url": videoURL, "thumbnail_url": thumbnailURL})
	}
}

// uploadVenueVideoHandler replaces a venue's presentation video. Scoped to
// the caller's venue.
func uploadVenueVideoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		venueId, err := strconv.Atoi(c.Param("id"))
		if err != nil || venueId <= 0 {
			badRequest(c, errors.New("invalid venue id"))
			return
		}

		venue, err := models.GetVenueById(ctx, venueId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
			return
		}
		role, _ := utils.GetUserRoleFromContext(ctx)
		userId, _ := utils.GetUserIdFromContext(ctx)
		switch role {
		case string(models.UserRoleAdmin):
		case string(models.UserRoleOwner):
			if venue.OwnerId != userId {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		case string(models.UserRoleStaff):
			staff, err := models.GetStaffByUserId(ctx, userId)
			if err != nil || staff.VenueId != venueId {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		video, err := c.FormFile("video")
		if err != nil {
			badRequest(c, errors.New("video file is required"))
			return
		}
		videoURL, err := saveUpload(c, video, "videos/etablissements", maxVideoSizeBytes, videoMimeTypes)
		if err != nil {
			badRequest(c, err)
			return
		}

		if poster, err := c.FormFile("poster"); err == nil {
			posterURL, err := saveUpload(c, poster, "images", maxImageSizeBytes, imageMimeTypes)
			if err != nil {
				badRequest(c, err)
				return
			}
			if _, err := createThumbnail(posterURL, "miniatures/videos"); err != nil {
				logger := config.GetLogger()
				config.LogError(logger, "server", "uploadVenueVideoHandler", "createThumbnail", logrus.Fields{"poster": posterURL}, err)
			}
		}

		db := config.GetDB()
		err = db.WithContext(ctx).Model(&models.Venue{}).
			Where("id = ?", venueId).
			Update("video_url", videoURL).Error
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"video_url": videoURL})
	}
}

// uploadTrophyPhotoHandler attaches the winner's photo to an awarded trophy.
func uploadTrophyPhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		trophyId, err := strconv.Atoi(c.Param("id"))
		if err != nil || trophyId <= 0 {
			badRequest(c, errors.New("invalid trophy id"))
			return
		}
		if err := utils.ValidateResourceId[models.Trophy](ctx, trophyId); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "trophy not found"})
			return
		}

		photo, err := c.FormFile("photo")
		if err != nil {
			badRequest(c, errors.New("photo file is required"))
			return
		}
		photoURL, err := saveUpload(c, photo, "trophees", maxImageSizeBytes, imageMimeTypes)
		if err != nil {
			badRequest(c, err)
			return
		}

		db := config.GetDB()
		err = db.WithContext(ctx).Model(&models.Trophy{}).
			Where("id = ?", trophyId).
			Update("photo_url", photoURL).Error
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"photo_url": photoURL})
	}
}

// uploadParticipantPhotoHandler stores a participant photo. The stored image
// is capped at 600px wide so originals never bloat the media tree.
func uploadParticipantPhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		participantId, err := strconv.Atoi(c.Param("id"))
		if err != nil || participantId <= 0 {
			badRequest(c, errors.New("invalid participant id"))
			return
		}
		participant, err := models.GetParticipantById(ctx, participantId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
			return
		}
		venueId, _, err := venueScope(c)
		if err != nil {
			badRequest(c, err)
			return
		}
		if participant.VenueId != venueId {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		photo, err := c.FormFile("photo")
		if err != nil {
			badRequest(c, errors.New("photo file is required"))
			return
		}
		photoURL, err := saveUpload(c, photo, "photos/participants", maxImageSizeBytes, imageMimeTypes)
		if err != nil {
			badRequest(c, err)
			return
		}

		// Downscale in place.
		src := filepath.Join(config.GetMediaRoot(), strings.TrimPrefix(photoURL, "/media/"))
		if img, err := imaging.Open(src); err == nil && img.Bounds().Dx() > 600 {
			resized := imaging.Resize(img, 600, 0, imaging.Lanczos)
			if err := imaging.Save(resized, src); err != nil {
				logger := config.GetLogger()
				config.LogError(logger, "server", "uploadParticipantPhotoHandler", "imaging.Save", logrus.Fields{"src": src}, err)
			}
		}

		db := config.GetDB()
		err = db.WithContext(ctx).Model(&models.Participant{}).
			Where("id = ?", participantId).
			Update("photo_url", photoURL).Error
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"photo_url": photoURL})
	}
}
