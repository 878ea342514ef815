package classify

import "github.com/couchcryptid/crop-advisory-service/internal/domain"

// Labels are the class names of each crop model, in model output order.
var Labels = map[domain.Crop][]string{
	domain.CropPotato: {
		"Early blight",
		"Late blight",
		"Healthy",
	},
	domain.CropTomato: {
		"Tomato_Bacterial_spot",
		"Tomato_Early_blight",
		"Tomato_Late_blight",
		"Tomato_Leaf_Mold",
		"Tomato_Septoria_leaf_spot",
		"Tomato_Spider_mites_Two_spotted_spider_mite",
		"Tomato_Target_Spot",
		"Tomato_Tomato_YellowLeaf_Curl_Virus",
		"Tomato_Tomato_mosaic_virus",
		"Tomato_healthy",
	},
	domain.CropPepper: {
		"Pepper__bell_Bacterial_spot",
		"Pepper__bell_healthy",
	},
	domain.CropRice: {
		"bacterial_leaf_blight",
		"bacterial_leaf_streak",
		"bacterial_panicle_blight",
		"blast",
		"brown_spot",
		"dead_heart",
		"downy_mildew",
		"hispa",
		"normal",
		"tungro",
	},
}
